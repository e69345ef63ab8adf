package dto

// StatusResponse reports the readiness of the service.
type StatusResponse struct {
	Status           string   `json:"status"`
	ModelLoaded      bool     `json:"model_loaded"`
	ModelPath        string   `json:"model_path"`
	ModelPathExists  bool     `json:"model_path_exists"`
	ModelClasses     int      `json:"model_classes"`
	MeaningsLoaded   bool     `json:"meanings_loaded"`
	MeaningsCount    int      `json:"meanings_count"`
	Languages        []string `json:"languages"`
	ArchiveEnabled   bool     `json:"archive_enabled"`
	ArchiveMode      string   `json:"archive_mode"`
	DatasetImages    int      `json:"dataset_images"`
	DatasetClasses   int      `json:"dataset_classes"`
	WorkingDirectory string   `json:"working_directory"`
}

// MeaningSample shows one table row in every language.
type MeaningSample struct {
	Name string `json:"name"`
	EN   string `json:"en"`
	KG   string `json:"kg"`
	RU   string `json:"ru"`
}

// DebugResponse exposes the loaded model classes and meaning names.
type DebugResponse struct {
	ModelClasses   []string        `json:"model_classes"`
	MeaningsCount  int             `json:"meanings_count"`
	MeaningNames   []string        `json:"meaning_names"`
	MeaningSamples []MeaningSample `json:"meaning_samples"`
	DatasetClasses []string        `json:"dataset_classes"`
}
