package pack

import "github.com/peondevelopments/aptrepo/cli/descriptor"

// CreateBuilder returns the builder of profile or nil if it is unsupported.
func CreateBuilder(profile descriptor.Profile, tools Tools) Builder {
	switch profile {
	case descriptor.ProfileDeb:
		return &debBuilder{tools: tools}
	case descriptor.ProfileIpk, descriptor.ProfileOpk:
		return &arBuilder{profile: profile, tools: tools}
	case descriptor.ProfileTgz:
		return &archiveBuilder{}
	default:
		return nil
	}
}

// CreateBuilders returns builders of all supported profiles.
func CreateBuilders(tools Tools) map[descriptor.Profile]Builder {
	builders := make(map[descriptor.Profile]Builder, len(descriptor.KnownProfiles))
	for _, profile := range descriptor.KnownProfiles {
		builders[profile] = CreateBuilder(profile, tools)
	}
	return builders
}
