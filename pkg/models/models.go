package models

// LayerInfo describes a single layer from the image history.
type LayerInfo struct {
	ID        string `json:"id"`
	CreatedBy string `json:"created_by"`
	Size      int64  `json:"size"`
}

// ImageMetadata is the inspection data the analyzer extracts from an image.
type ImageMetadata struct {
	ImageID      string      `json:"image_id"`
	Author       string      `json:"author,omitempty"`
	OS           string      `json:"os"`
	Architecture string      `json:"architecture"`
	Size         int64       `json:"size"`
	User         string      `json:"user,omitempty"`
	ExposedPorts []string    `json:"exposed_ports,omitempty"`
	EnvVars      []string    `json:"env_vars,omitempty"`
	History      []LayerInfo `json:"history"`
}

// AnalysisResult is the payload of a successful primary analysis.
type AnalysisResult struct {
	Image           string        `json:"image"`
	Metadata        ImageMetadata `json:"metadata"`
	Recommendations string        `json:"recommendations"`
}

// Suggestion is a single optimization opportunity found by the analyzer.
type Suggestion struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	EstimatedSavings int64  `json:"estimated_savings"`
}

// OptimizationReport summarizes how much an image could shrink.
type OptimizationReport struct {
	TotalSize        int64        `json:"total_size"`
	PotentialSavings int64        `json:"potential_savings"`
	Suggestions      []Suggestion `json:"suggestions"`
}

// NodeKind distinguishes files from directories in a FileNode tree.
type NodeKind string

const (
	KindFile      NodeKind = "file"
	KindDirectory NodeKind = "directory"
)

// FileNode is one entry of the image file-system listing. Name is a path
// segment, not a full path. For directories, Children carries the listed
// entries: a nil slice means the server did not explore the directory,
// an empty slice means it was explored and is empty. The forest returned
// by the files endpoint is an immutable snapshot; viewers must not mutate it.
type FileNode struct {
	Name      string     `json:"name"`
	Kind      NodeKind   `json:"kind"`
	SizeBytes int64      `json:"size_bytes"`
	Children  []FileNode `json:"children,omitempty"`
}

// IsDir reports whether the node is a directory.
func (n FileNode) IsDir() bool {
	return n.Kind == KindDirectory
}

// Explored reports whether the server listed the directory's contents.
// Only meaningful for directories.
func (n FileNode) Explored() bool {
	return n.Children != nil
}

// Speaker identifies who authored a chat entry.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// ChatMessage is one entry of a session's chat log.
type ChatMessage struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}
