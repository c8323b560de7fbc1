package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

type emptyStruct struct{}

// readyChan is a channel used to signal completion of command execution.
type readyChan chan emptyStruct

var (
	spinnerPicture    = spinner.CharSets[9]
	spinnerUpdateTime = 100 * time.Millisecond

	ready = emptyStruct{}
)

// Command describes a single invocation of an external program.
type Command struct {
	// Program is the executable name or path.
	Program string
	// Args are the program arguments.
	Args []string
	// Dir is the working directory. Empty means the current one.
	Dir string
	// Stdin is passed to the program standard input, if set.
	Stdin io.Reader
	// Stdout receives the program standard output, if set. Otherwise the
	// output is shown or buffered according to the runner settings.
	Stdout io.Writer
}

// String returns a shell-like representation of the command.
func (c Command) String() string {
	return strings.TrimSpace(c.Program + " " + strings.Join(c.Args, " "))
}

// Runner runs external programs and waits for them to complete.
type Runner interface {
	// Run executes the command. A nonzero exit status is reported as *ExitError.
	Run(cmd Command) error
}

// ExecRunner is a Runner that executes programs with os/exec.
type ExecRunner struct {
	// ShowOutput shows program output instead of a spinner.
	ShowOutput bool
}

// Run implements Runner.
func (runner ExecRunner) Run(command Command) error {
	cmd := exec.Command(command.Program, command.Args...)
	if command.Stdin != nil {
		cmd.Stdin = command.Stdin
	}
	if command.Stdout != nil {
		cmd.Stdout = command.Stdout
	}
	log.Debugf("Run: %s", command)

	err := RunCommand(cmd, command.Dir, runner.ShowOutput)
	if err == nil {
		return nil
	}

	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return &ExitError{Program: command.Program, Code: code, Err: err}
}

// sendReady sends ready to channel.
func sendReady(readyChannel readyChan) {
	readyChannel <- ready
}

// startAndWaitCommand executes a command.
// and sends `ready` flag to the channel before return.
func startAndWaitCommand(cmd *exec.Cmd, readyChannel readyChan,
	workGroup *sync.WaitGroup, err *error) {
	defer workGroup.Done()
	defer sendReady(readyChannel)

	if *err = cmd.Start(); *err != nil {
		return
	}

	if *err = cmd.Wait(); *err != nil {
		return
	}
}

// StartCommandSpinner starts running spinner.
// until `ready` flag is received from the channel.
func StartCommandSpinner(readyChannel readyChan, wg *sync.WaitGroup, prefix string) {
	defer wg.Done()

	spinner := spinner.New(spinnerPicture, spinnerUpdateTime)
	if prefix != "" {
		spinner.Prefix = fmt.Sprintf("%s ", strings.TrimSpace(prefix))
	}

	spinner.Start()

	// Wait for the command to complete.
	<-readyChannel

	spinner.Stop()
}

// RunCommand runs specified command and returns an error.
// If showOutput is set to true, command output is shown.
// Else spinner is shown while command is running.
// A standard output already attached to cmd is kept as is.
func RunCommand(cmd *exec.Cmd, workingDir string, showOutput bool) error {
	var err error
	var workGroup sync.WaitGroup
	readyChannel := make(readyChan, 1)

	var outputBuf *os.File

	cmd.Dir = workingDir
	if showOutput {
		if cmd.Stdout == nil {
			cmd.Stdout = os.Stdout
		}
		cmd.Stderr = os.Stderr
	} else {
		if outputBuf, err = os.CreateTemp("", "out"); err != nil {
			log.Warnf("Failed to create tmp file to store command output: %s", err)
		} else {
			if cmd.Stdout == nil {
				cmd.Stdout = outputBuf
			}
			cmd.Stderr = outputBuf
			defer outputBuf.Close()
			defer os.Remove(outputBuf.Name())
		}

		if isatty.IsTerminal(os.Stdout.Fd()) {
			workGroup.Add(1)
			go StartCommandSpinner(readyChannel, &workGroup, "")
		}
	}

	workGroup.Add(1)
	go startAndWaitCommand(cmd, readyChannel, &workGroup, &err)

	workGroup.Wait()

	if err != nil {
		if outputBuf != nil {
			if err := PrintFromStart(outputBuf); err != nil {
				log.Warnf("Failed to show command output: %s", err)
			}
		}

		return fmt.Errorf("failed to run \n%s\n\n%w", cmd.String(), err)
	}

	return nil
}

// PrintFromStart prints file content from the beginning to stderr.
func PrintFromStart(file *os.File) error {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek file begin: %s", err)
	}
	if _, err := io.Copy(os.Stderr, file); err != nil {
		log.Warnf("Failed to print file content: %s", err)
	}

	return nil
}
