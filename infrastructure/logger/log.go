package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// BackendLog is the logging backend used to create all subsystem loggers.
var BackendLog = NewBackend()

// SubsystemTags is an enum of all sub system tags
var SubsystemTags = struct {
	FXTR,
	VRFY,
	BTCD,
	DTCT,
	FGEN,
	DIFF,
	GENR string
}{
	FXTR: "FXTR",
	VRFY: "VRFY",
	BTCD: "BTCD",
	DTCT: "DTCT",
	FGEN: "FGEN",
	DIFF: "DIFF",
	GENR: "GENR",
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]*Logger{
	SubsystemTags.FXTR: BackendLog.Logger(SubsystemTags.FXTR),
	SubsystemTags.VRFY: BackendLog.Logger(SubsystemTags.VRFY),
	SubsystemTags.BTCD: BackendLog.Logger(SubsystemTags.BTCD),
	SubsystemTags.DTCT: BackendLog.Logger(SubsystemTags.DTCT),
	SubsystemTags.FGEN: BackendLog.Logger(SubsystemTags.FGEN),
	SubsystemTags.DIFF: BackendLog.Logger(SubsystemTags.DIFF),
	SubsystemTags.GENR: BackendLog.Logger(SubsystemTags.GENR),
}

// InitLog attaches a log file, an error log file and stderr to BackendLog and
// starts it. Nothing is written anywhere until InitLog is called.
func InitLog(logFile, errLogFile string, stderrLevel Level) error {
	err := BackendLog.AddLogFile(logFile, LevelTrace)
	if err != nil {
		return errors.Wrapf(err, "error adding log file %s as log rotator for level %s", logFile, LevelTrace)
	}
	err = BackendLog.AddLogFile(errLogFile, LevelWarn)
	if err != nil {
		return errors.Wrapf(err, "error adding log file %s as log rotator for level %s", errLogFile, LevelWarn)
	}
	err = BackendLog.AddStandardStream(os.Stderr, stderrLevel)
	if err != nil {
		return err
	}
	return BackendLog.Run()
}

// LogFilePaths returns the regular and the error log file of appName in logDir.
func LogFilePaths(logDir, appName string) (logFile, errLogFile string) {
	return filepath.Join(logDir, fmt.Sprintf("%s.log", appName)),
		filepath.Join(logDir, fmt.Sprintf("%s_err.log", appName))
}

// SetLogLevel sets the logging level for provided subsystem. Invalid
// subsystems are ignored.
func SetLogLevel(subsystemID string, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}

	level, _ := LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level.
func SetLogLevels(logLevel string) error {
	if _, ok := LevelFromString(logLevel); !ok {
		return errors.Errorf("invalid log level %s", logLevel)
	}
	for subsystemID := range subsystemLoggers {
		SetLogLevel(subsystemID, logLevel)
	}
	return nil
}

// SupportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func SupportedSubsystems() []string {
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)
	return subsystems
}

// Get returns a logger of a specific sub system
func Get(tag string) (logger *Logger, ok bool) {
	logger, ok = subsystemLoggers[tag]
	return
}
