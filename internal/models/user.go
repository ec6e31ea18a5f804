package models

import (
	"encoding/json"
	"fmt"
)

type User struct {
	ID        int         `json:"id"`
	Firstname string      `json:"firstname"`
	Lastname  string      `json:"lastname"`
	Email     string      `json:"email"`
	Telephone *string     `json:"telephone,omitempty"`
	Role      string      `json:"role"`
	Avatar    *string     `json:"avatar,omitempty"`
	Classe    *ClasseRef  `json:"classe,omitempty"`
	Filiere   *FiliereRef `json:"filiere,omitempty"`
}

type ClasseRef struct {
	ID     int    `json:"id"`
	Nom    string `json:"nom"`
	Niveau string `json:"niveau"`
}

type FiliereRef struct {
	ID  int    `json:"id"`
	Nom string `json:"nom"`
}

// CardState is the card's activation state. The campus API has served it
// as a string, as a nullable boolean and as 0/1.
type CardState string

const (
	CardStateActive   CardState = "active"
	CardStateInactive CardState = "inactive"
)

func (s *CardState) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*s = ""
	case bool:
		if v {
			*s = CardStateActive
		} else {
			*s = CardStateInactive
		}
	case float64:
		switch v {
		case 1:
			*s = CardStateActive
		case 0:
			*s = CardStateInactive
		default:
			return fmt.Errorf("card state: unexpected number %v", v)
		}
	case string:
		*s = CardState(v)
	default:
		return fmt.Errorf("card state: unexpected %T", raw)
	}
	return nil
}

type Card struct {
	ID             int       `json:"id"`
	NumCarte       string    `json:"num_carte"`
	Token          string    `json:"token"`
	Etat           CardState `json:"etat"`
	DateActivation *string   `json:"date_activation,omitempty"`
	DateExpiration *string   `json:"date_expiration,omitempty"`
}

// ProfileUpdate carries the fields a student may change on their profile.
// Nil fields are left untouched upstream.
type ProfileUpdate struct {
	Firstname *string `json:"firstname,omitempty"`
	Lastname  *string `json:"lastname,omitempty"`
	Email     *string `json:"email,omitempty"`
	Telephone *string `json:"telephone,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
}
