package llm

// ChunkKind tags the source of a grounding chunk.
type ChunkKind int

const (
	// ChunkUnknown is a chunk whose source the caller does not render.
	ChunkUnknown ChunkKind = iota
	// ChunkWeb is a web search result.
	ChunkWeb
	// ChunkMaps is a maps/place result.
	ChunkMaps
)

// String returns a short name for the kind.
func (k ChunkKind) String() string {
	switch k {
	case ChunkWeb:
		return "web"
	case ChunkMaps:
		return "maps"
	default:
		return "unknown"
	}
}

// GroundingChunk is one citation source reported by the provider.
// Title may be empty when the provider omits it.
type GroundingChunk struct {
	Kind  ChunkKind
	Title string
	URI   string
}

// WebChunk builds a ChunkWeb entry.
func WebChunk(title, uri string) GroundingChunk {
	return GroundingChunk{Kind: ChunkWeb, Title: title, URI: uri}
}

// MapsChunk builds a ChunkMaps entry.
func MapsChunk(title, uri string) GroundingChunk {
	return GroundingChunk{Kind: ChunkMaps, Title: title, URI: uri}
}
