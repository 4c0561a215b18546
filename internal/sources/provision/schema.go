package provision

// File is the shape of the provision file: a flat list of servers the
// administrator wants present in every profile.
type File struct {
	Servers []ServerEntry `yaml:"servers"`
}

// ServerEntry is one preset server.
type ServerEntry struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}
