package build

import "fmt"

// Stage identifies the pipeline step that failed.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageExtract   Stage = "extract"
	StageConfigure Stage = "configure"
	StageCompile   Stage = "compile"
	StageInstall   Stage = "install"
	StageVerify    Stage = "verify"
)

// Error reports a failed build of one version, carrying the stage that
// failed so the summary can say more than "build failed".
type Error struct {
	Version string
	Stage   Stage
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("build %s: %s failed: %v", e.Version, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func stageErr(version string, stage Stage, err error) *Error {
	return &Error{Version: version, Stage: stage, Err: err}
}
