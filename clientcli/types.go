package clientcli

import "fmt"

// Collection names a server collection.
type Collection string

const (
	CollectionKeys  Collection = "keys"
	CollectionFiles Collection = "files"
)

// ParseCollection validates a collection name.
func ParseCollection(s string) (Collection, error) {
	switch c := Collection(s); c {
	case CollectionKeys, CollectionFiles:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCollection, s)
	}
}

// PutOptions configures a put operation.
type PutOptions struct {
	Collection Collection
	Name       string
	Content    string
}

// PutResult represents the server's answer to a put.
type PutResult struct {
	Collection Collection `json:"collection"`
	Name       string     `json:"name"`
	Message    string     `json:"message"`
}

// Entry is a single entry read back from the server.
type Entry struct {
	Collection Collection `json:"collection"`
	Name       string     `json:"name"`
	Content    string     `json:"content"`
}

// ListResult holds the names of a collection.
type ListResult struct {
	Collection Collection `json:"collection"`
	Names      []string   `json:"names"`
}

// TokenResult is the token the server extracted from the request.
type TokenResult struct {
	Token   string `json:"token"`
	Present bool   `json:"present"`
}

// Operation is a timed KV operation.
type Operation string

const (
	OpWrite Operation = "write"
	OpRead  Operation = "read"
)

// Measurement is the timing reported by one /measure request.
type Measurement struct {
	Token string    `json:"token"`
	Op    Operation `json:"op"`
	Ms    int64     `json:"ms"`
	Err   error     `json:"-"` // nil on success
}

// serverList mirrors the JSON list response.
type serverList struct {
	Names []string `json:"names"`
}

// serverEntry mirrors the JSON entry response.
type serverEntry struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// serverCreated mirrors the JSON create response.
type serverCreated struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}
