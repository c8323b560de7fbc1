package descriptor

// Profile is a target package format.
type Profile string

const (
	// ProfileDeb is a Debian binary package built by dpkg-deb.
	ProfileDeb Profile = "deb"
	// ProfileIpk is an Itsy package for embedded distributions.
	ProfileIpk Profile = "ipk"
	// ProfileOpk is an OpenEmbedded package, laid out like ipk.
	ProfileOpk Profile = "opk"
	// ProfileTgz is a plain gzip compressed tarball of the payload.
	ProfileTgz Profile = "tar.gz"
)

// KnownProfiles lists supported profiles in a stable order.
var KnownProfiles = []Profile{ProfileDeb, ProfileIpk, ProfileOpk, ProfileTgz}

// ParseProfile returns the profile named name.
func ParseProfile(name string) (Profile, bool) {
	for _, profile := range KnownProfiles {
		if string(profile) == name {
			return profile, true
		}
	}
	return "", false
}

// Extension returns the artifact file extension of the profile.
func (p Profile) Extension() string {
	return string(p)
}
