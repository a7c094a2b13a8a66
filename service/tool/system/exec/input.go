package exec

// Input represents a batch of commands to run on the local host.
type Input struct {
	Directory    string            `json:"directory,omitempty" description:"working directory commands start in"`
	Env          map[string]string `json:"env,omitempty" description:"environment variables set before commands run"`
	Commands     []string          `json:"commands" required:"true" description:"commands to execute"`
	TimeoutMs    int               `json:"timeoutMs,omitempty" description:"max wait time per command before timing out"`
	AbortOnError *bool             `json:"abortOnError,omitempty" description:"stop the batch on the first non-zero exit"`
}

// Command captures the outcome of one executed command.
type Command struct {
	Input  string `json:"input"`
	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`
	Status int    `json:"status"`
}

// Output aggregates the batch outcome; Status is the last exit code.
type Output struct {
	Commands []*Command `json:"commands,omitempty"`
	Stdout   string     `json:"stdout,omitempty"`
	Stderr   string     `json:"stderr,omitempty"`
	Status   int        `json:"status"`
}
