package domain

// Settings contains user-selectable runtime configuration.
type Settings struct {
	DownloadDir    string `json:"downloadDir" env:"MEDIA_GRABBER_DOWNLOAD_DIR"`
	TempDir        string `json:"tempDir" env:"MEDIA_GRABBER_TEMP_DIR"`
	CookiesPath    string `json:"cookiesPath" env:"MEDIA_GRABBER_COOKIES_PATH"`
	ResourcesDir   string `json:"resourcesDir" env:"MEDIA_GRABBER_RESOURCES_DIR"`
	RecognizerPath string `json:"recognizerPath" env:"MEDIA_GRABBER_RECOGNIZER_PATH"`
	ModelPath      string `json:"modelPath" env:"MEDIA_GRABBER_MODEL_PATH"`
	Language       string `json:"language" env:"MEDIA_GRABBER_LANGUAGE"`
	LogLevel       string `json:"logLevel" env:"MEDIA_GRABBER_LOG_LEVEL"`
}
