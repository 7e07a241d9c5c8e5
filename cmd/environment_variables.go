package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

const (
	EnvironmentVariablePrefix = "LASTQUERY_"
	// FileSuffix is appended to an environment variable name to instead
	// read the flag value from the named file, e.g. LASTQUERY_DATABASE_FILE.
	FileSuffix = "_FILE"
)

// SetFlagsFromEnvVariables sets flags from environment variables. Each flag
// can be set with an env variable whose name starts with `LASTQUERY_`, or with
// the contents of a file whose path is given in an env variable with the
// same name but suffixed with `_FILE`. A flag explicitly set on the command
// line takes precedence, providing the command line is parsed after calling
// this func.
func SetFlagsFromEnvVariables(fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		envVar := flagToEnvVarName(f)
		if val, present := os.LookupEnv(envVar); present {
			err = fs.Set(f.Name, val)
			return
		}
		if strings.HasSuffix(envVar, FileSuffix) {
			// don't permit LASTQUERY_FOO_FILE_FILE
			return
		}
		if path, present := os.LookupEnv(envVar + FileSuffix); present {
			contents, readErr := os.ReadFile(path)
			if readErr != nil {
				err = fmt.Errorf("reading value for flag --%s from file: %w", f.Name, readErr)
				return
			}
			err = fs.Set(f.Name, string(contents))
		}
	})
	return err
}

func flagToEnvVarName(f *pflag.Flag) string {
	return fmt.Sprintf("%s%s", EnvironmentVariablePrefix, strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_"))
}
