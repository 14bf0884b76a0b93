// Package flagx lets several configuration layers read their own flags from
// os.Args without tripping over each other's definitions.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the flags named in allowedFlags, together with their
// values. Both "-c conf.json" and "--config=conf.json" forms are recognised;
// a following token that starts with "-" is never taken as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// JsonConfigFlags returns the JSON config path given with -c or -config,
// or "" when neither is present.
func JsonConfigFlags() string {
	return stringFlag("json", "config", "c", "Path to config file")
}

// EnvFileFlags returns the dotenv path given with -env, or "" when absent.
func EnvFileFlags() string {
	return stringFlag("env", "env", "", "Path to .env file")
}

// stringFlag parses a single string flag (with an optional short alias) out of
// os.Args, ignoring everything else. The last occurrence wins.
func stringFlag(set, long, short, usage string) string {
	var value string

	names := []string{"-" + long}
	if short != "" {
		names = append(names, "-"+short)
	}
	args := FilterArgs(os.Args[1:], names)

	fs := flag.NewFlagSet(set, flag.ContinueOnError)
	fs.StringVar(&value, long, "", usage)
	if short != "" {
		fs.StringVar(&value, short, "", usage+" (short)")
	}
	_ = fs.Parse(args)

	return value
}
