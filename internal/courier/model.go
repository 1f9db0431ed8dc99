package courier

import "errors"

var ErrNotFound = errors.New("courier not found")

type Courier struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Available bool   `json:"available"`
}
