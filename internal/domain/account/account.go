package account

import "strings"

type Profile struct {
	Name                 string `json:"name"`
	AvailableGenerations int    `json:"availableGenerations"`
}

// Initials returns up to two upper-case initials for the avatar.
func (p Profile) Initials() string {
	var out []rune
	word := true
	for _, r := range p.Name {
		if r == ' ' || r == '\t' {
			word = true
			continue
		}
		if word {
			out = append(out, r)
			word = false
			if len(out) == 2 {
				break
			}
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return strings.ToUpper(string(out))
}

type CardSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type SaveResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// Tariff is a generation pack offered on the dashboard.
type Tariff struct {
	Generations int  `json:"generations"`
	PriceRub    int  `json:"priceRub"`
	Popular     bool `json:"popular"`
}

func Tariffs() []Tariff {
	return []Tariff{
		{Generations: 5, PriceRub: 800, Popular: true},
		{Generations: 1, PriceRub: 300},
		{Generations: 10, PriceRub: 1500},
	}
}
