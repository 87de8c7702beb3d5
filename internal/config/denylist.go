package config

import "runtime"

// Built-in deny lists. These cover operating system installation
// directories; a plan that reaches into any of them is rejected no
// matter what the sandbox root says.
var platformDenyLists = map[string][]string{
	"linux": {
		"/bin",
		"/boot",
		"/dev",
		"/etc",
		"/lib",
		"/lib64",
		"/proc",
		"/run",
		"/sbin",
		"/sys",
		"/usr",
	},
	"darwin": {
		"/Applications",
		"/Library",
		"/System",
		"/bin",
		"/private/etc",
		"/sbin",
		"/usr",
	},
	"windows": {
		`C:\Program Files`,
		`C:\Program Files (x86)`,
		`C:\Windows`,
	},
}

// builtinDenyList returns the deny list for platform. "auto" follows
// runtime.GOOS; unrecognized unixes get the linux list.
func builtinDenyList(platform string) []string {
	if platform == "auto" {
		platform = runtime.GOOS
	}
	if list, ok := platformDenyLists[platform]; ok {
		return append([]string(nil), list...)
	}
	return append([]string(nil), platformDenyLists["linux"]...)
}
