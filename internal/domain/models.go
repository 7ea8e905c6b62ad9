package domain

// RecognizerModelOption describes one whisper.cpp model preset and whether it is installed.
type RecognizerModelOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FileName    string `json:"fileName"`
	SizeLabel   string `json:"sizeLabel,omitempty"`
	Description string `json:"description,omitempty"`
	Installed   bool   `json:"installed"`
	LocalPath   string `json:"localPath,omitempty"`
	Active      bool   `json:"active"`
}
