package company

import "time"

type Company struct {
	ID        string
	Name      string
	Country   string
	State     string
	Timezone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
