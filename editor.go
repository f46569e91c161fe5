package editor

const (
	Name    = "argyll-editor"
	Version = "0.1.0"
)
