package domain

// Filter is a saved filter: a name bound to one of the owner's labels.
// Applying it keeps the input items that are members of the label.
type Filter struct {
	Entity
	OwnerID string `json:"owner"`
	Name    string `json:"name"`
	LabelID string `json:"label"`
}

// MatchItems returns the items of input that are members of labelItems,
// keeping input order and multiplicity.
func MatchItems(labelItems, input []string) []string {
	members := make(map[string]struct{}, len(labelItems))
	for _, item := range labelItems {
		members[item] = struct{}{}
	}

	out := make([]string, 0, len(input))
	for _, item := range input {
		if _, ok := members[item]; ok {
			out = append(out, item)
		}
	}
	return out
}
