package models

type Classe struct {
	ID      int     `json:"id"`
	Nom     string  `json:"nom"`
	Niveau  string  `json:"niveau"`
	Filiere *string `json:"filiere"`
}

type Filiere struct {
	ID  int    `json:"id"`
	Nom string `json:"nom"`
}

type Matiere struct {
	ID   int    `json:"id"`
	Nom  string `json:"nom"`
	Code string `json:"code"`
}
