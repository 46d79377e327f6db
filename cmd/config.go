package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "snipgraph"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	strictFlagName    = "strict"
	maxPassesFlagName = "max-passes"
	resolveFlagName   = "resolve"
	outputFlagName    = "output"
	debounceFlagName  = "debounce"
	journalFlagName   = "journal"
	rawFlagName       = "raw"
	verboseFlagName   = "verbose"
	logFileFlagName   = "log-file"

	strictConfigKey      = "engine.strict"
	maxPassesConfigKey   = "engine.max_passes"
	resolveConfigKey     = "modules.resolve"
	jsxConfigKey         = "transpile.jsx"
	jsxFactoryConfigKey  = "transpile.jsx_factory"
	jsxFragmentConfigKey = "transpile.jsx_fragment"
	cacheSizeConfigKey   = "transpile.cache_size"
	outputConfigKey      = "build.output"
	debounceConfigKey    = "watch.debounce"
	journalConfigKey     = "watch.journal"

	defaultStrict     = false
	defaultMaxPasses  = 0
	defaultJSX        = "transform"
	defaultCacheSize  = 512
	defaultOutputDir  = "dist"
	defaultDebounce   = 100 * time.Millisecond
	defaultJournal    = ".snipgraph/events.gob"
	defaultJSXFactory = ""

	envPrefix = "SNIPGRAPH"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".snipgraph.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	initConfig()
}

// initConfig registers config sources and defaults on the global viper
// instance and reads snipgraph.yaml when present.
func initConfig() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(strictConfigKey, defaultStrict)
	viper.SetDefault(maxPassesConfigKey, defaultMaxPasses)
	viper.SetDefault(resolveConfigKey, map[string]string{})
	viper.SetDefault(jsxConfigKey, defaultJSX)
	viper.SetDefault(jsxFactoryConfigKey, defaultJSXFactory)
	viper.SetDefault(jsxFragmentConfigKey, "")
	viper.SetDefault(cacheSizeConfigKey, defaultCacheSize)
	viper.SetDefault(outputConfigKey, defaultOutputDir)
	viper.SetDefault(debounceConfigKey, defaultDebounce)
	viper.SetDefault(journalConfigKey, defaultJournal)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Debug("No config file loaded", "file", configFileName, "error", err)
		}
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels are accepted too, e.g. -4 for debug.
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger points the global slog logger at a rotating log file.
//
// It logs at the configured level, or at Debug when verbose is set.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose || viper.GetBool(logVerboseKey) {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
