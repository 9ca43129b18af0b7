package workspace

// Resolver supplies the type information templates are checked against.
// Names are whatever the host language uses, e.g. Java class names.
type Resolver interface {
	// ResolveType returns the type of a root object the template does not
	// declare itself.
	ResolveType(name string) (string, bool)
	// Members lists the properties and methods of typeName.
	Members(typeName string) []Member
}

type Member struct {
	Name   string
	Type   string
	Method bool
}

type nopResolver struct{}

func (nopResolver) ResolveType(string) (string, bool) { return "", false }

func (nopResolver) Members(string) []Member { return nil }

func findMember(members []Member, name string) (Member, bool) {
	for _, m := range members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}
