package mcp

// ListInput is the input for the list_files tool.
type ListInput struct {
	Path string `json:"path,omitempty" jsonschema:"Directory to list (default: /)"`
}

// FileInfo describes one directory entry.
type FileInfo struct {
	Name  string `json:"name"`
	Mode  string `json:"mode"`
	Size  uint64 `json:"size"`
	IsDir bool   `json:"is_dir"`
}

// ListOutput is the output for the list_files tool.
type ListOutput struct {
	Path    string     `json:"path"`
	Entries []FileInfo `json:"entries"`
}

// ReadInput is the input for the read_file tool.
type ReadInput struct {
	Path string `json:"path" jsonschema:"required,File to read"`
}

// ReadOutput is the output for the read_file tool.
type ReadOutput struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
	Bytes     int    `json:"bytes"`
}

// WriteInput is the input for the write_file tool.
type WriteInput struct {
	Path string `json:"path" jsonschema:"required,File to write"`
	Data string `json:"data" jsonschema:"required,Text to write; ctl files run one command per line"`
}

// CreateInput is the input for the create_file tool.
type CreateInput struct {
	Path string `json:"path" jsonschema:"required,Path of the new entry, e.g. /tag/mail or /bar/clock"`
	Data string `json:"data,omitempty" jsonschema:"Optional initial content"`
	Dir  bool   `json:"dir,omitempty" jsonschema:"Create a directory (default: true under /tag)"`
}

// RemoveInput is the input for the remove_file tool.
type RemoveInput struct {
	Path string `json:"path" jsonschema:"required,Entry to remove"`
}

// WaitForEventInput is the input for the wait_for_event tool.
type WaitForEventInput struct {
	Count   int    `json:"count,omitempty" jsonschema:"Stop after this many lines (default: 1)"`
	Pattern string `json:"pattern,omitempty" jsonschema:"Stop at the first line containing this text"`
	Timeout int    `json:"timeout,omitempty" jsonschema:"Timeout in seconds (default: 30)"`
}

// WaitForEventOutput is the output for the wait_for_event tool.
type WaitForEventOutput struct {
	Events   []string `json:"events"`
	Found    *bool    `json:"found,omitempty"`
	TimedOut bool     `json:"timed_out"`
}
