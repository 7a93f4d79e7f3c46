package config

// Decoder turns the raw bytes of one configuration format into a generic
// map, the format-agnostic shape the loaders merge defaults into.
type Decoder interface {
	// Decode parses data read from the file called name.
	Decode(name string, data []byte) (map[string]any, error)
}
