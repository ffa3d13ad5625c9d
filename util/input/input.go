package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// AskYesNo returns true if user input is 'y' or 'Y' and false if 'n' or 'N'.
//
// If user types neither 'y', 'Y', 'n' or 'N', it asks again. End of <in> is treated as 'n'.
//
// <in> is a reader to read data from. Usually it should be 'os.Stdin'.
//
// <out> is a writer to print <prompt> to. Usually it should be 'os.Stderr'.
func AskYesNo(log *logrus.Logger, in io.Reader, out io.Writer, prompt string) bool {
	answer := ask(log, bufio.NewReader(in), out, true, prompt, func(input string) bool {
		switch input {
		case "y", "Y", "n", "N":
			return false
		}
		return true
	})
	return lo.Ternary(strings.ToLower(answer) == "y", true, false)
}

// ask returns user input, preliminarily printing <prompt> to <out>.
//
// It runs until read is successful and <callback> returns false, or until <in> is exhausted.
//
// If <trim> is true, trim space from user input before passing it to <callback>.
func ask(log *logrus.Logger, in *bufio.Reader, out io.Writer, trim bool, prompt string,
	callback func(string) bool) string {
	for {
		fmt.Fprint(out, prompt)
		input, err := in.ReadString('\n')
		if trim {
			input = strings.TrimSpace(input)
		}
		if !callback(input) {
			return input
		}
		if errors.Is(err, io.EOF) {
			return ""
		}
		if err != nil {
			log.Error(errors.Wrap(err, "Read from standard input"))
			return ""
		}
	}
}
