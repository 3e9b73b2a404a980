package stub

import "strings"

// Seed is a small fixed catalog for local development.
func Seed() []Product {
	return []Product{
		{Name: "Rochie de seară Ana", Price: "349 RON", Image: "https://ejolie.ro/img/rochie-ana.jpg", Link: "https://ejolie.ro/rochie-ana", Tags: []string{"rochie", "rochii", "seara", "seară", "elegant"}},
		{Name: "Rochie midi Bianca", Price: "279 RON", Image: "https://ejolie.ro/img/rochie-bianca.jpg", Link: "https://ejolie.ro/rochie-bianca", Tags: []string{"rochie", "rochii", "midi", "vara", "vară"}},
		{Name: "Rochie tricotată Carla", Price: "229 RON", Link: "https://ejolie.ro/rochie-carla", Tags: []string{"rochie", "rochii", "iarna", "iarnă", "tricot"}},
		{Name: "Geantă din piele Dana", Price: "419 RON", Image: "https://ejolie.ro/img/geanta-dana.jpg", Link: "https://ejolie.ro/geanta-dana", Tags: []string{"geanta", "geantă", "genti", "genți", "piele"}},
		{Name: "Pantofi stiletto Elena", Price: "299 RON", Image: "https://ejolie.ro/img/pantofi-elena.jpg", Link: "https://ejolie.ro/pantofi-elena", Tags: []string{"pantofi", "stiletto", "elegant"}},
	}
}

// match returns up to maxMatches products whose name or tags contain one
// of the words of message.
func match(catalog []Product, message string) []Product {
	words := strings.Fields(strings.ToLower(message))

	var out []Product
	for _, p := range catalog {
		if len(out) == maxMatches {
			break
		}
		if matches(p, words) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p Product, words []string) bool {
	name := strings.ToLower(p.Name)
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:")
		if len([]rune(w)) < 3 {
			continue
		}
		if strings.Contains(name, w) {
			return true
		}
		for _, tag := range p.Tags {
			if tag == w {
				return true
			}
		}
	}
	return false
}
