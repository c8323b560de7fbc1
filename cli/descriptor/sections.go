package descriptor

// DefaultArchiveSection is used for packages whose section is not in
// ArchiveSections.
const DefaultArchiveSection = "misc"

// ArchiveSections is the closed vocabulary of archive sections a package
// may be filed under.
var ArchiveSections = []string{
	"admin", "cli-mono", "comm", "database", "debian-installer", "debug",
	"devel", "doc", "editors", "education", "electronics", "embedded",
	"fonts", "games", "gnome", "gnu-r", "gnustep", "graphics", "hamradio",
	"haskell", "httpd", "interpreters", "introspection", "java", "javascript",
	"kde", "kernel", "libdevel", "libs", "lisp", "localization", "mail",
	"math", "metapackages", "misc", "net", "news", "ocaml", "oldlibs",
	"otherosfs", "perl", "php", "python", "ruby", "rust", "science", "shells",
	"sound", "tasks", "tex", "text", "utils", "vcs", "video", "web", "x11",
	"xfce", "zope",
}

var archiveSectionSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(ArchiveSections))
	for _, name := range ArchiveSections {
		set[name] = struct{}{}
	}
	return set
}()

// ArchiveSectionOrMisc returns section if it belongs to the vocabulary and
// DefaultArchiveSection otherwise.
func ArchiveSectionOrMisc(section string) string {
	if _, found := archiveSectionSet[section]; found {
		return section
	}
	return DefaultArchiveSection
}
