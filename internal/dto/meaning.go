package dto

type MeaningResponse struct {
	Ornament string `json:"ornament"`
	Meaning  string `json:"meaning"`
	Language string `json:"language"`
}
