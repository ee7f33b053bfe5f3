package log

import (
	"calorie-tracker/utils"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"time"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/sirupsen/logrus"
	"gopkg.in/go-extras/elogrus.v7"
)

const hostTag = "calorie-tracker"

type LogService struct{}

// LoggerInit builds a logger that writes to stdout and logs/<day>/<name>.log,
// with optional Elasticsearch and Logstash hooks.
func (l *LogService) LoggerInit(name string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	logger.SetLevel(l.level())

	var writers []io.Writer
	writers = append(writers, os.Stdout)
	if src, err := l.openLogFile(name); err != nil {
		fmt.Println(err.Error())
	} else {
		writers = append(writers, src)
	}
	logger.SetOutput(io.MultiWriter(writers...))

	if utils.EnvConfig == nil {
		return logger
	}

	if utils.EnvConfig.Log.ElkEnable == 1 {
		client, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: []string{utils.EnvConfig.Log.ElkURL},
		})
		if err != nil {
			logger.Debug(err.Error())
		} else {
			hook, err := elogrus.NewAsyncElasticHook(client, hostTag, logrus.DebugLevel, utils.EnvConfig.Log.ElkIndex)
			if err != nil {
				logger.Debug(err.Error())
			} else {
				logger.Hooks.Add(hook)
			}
		}
	}

	if utils.EnvConfig.Log.LogstashEnable == 1 {
		conn, err := net.Dial("udp", utils.EnvConfig.Log.LogstashURL)
		if err != nil {
			logger.Debug(err)
		} else {
			fields := logrus.Fields{"type": hostTag}
			if utils.EnvConfig.Log.LogstashIndex != "" {
				fields["index"] = utils.EnvConfig.Log.LogstashIndex
			}
			hook := logrustash.New(conn, logrustash.DefaultFormatter(fields))
			logger.Hooks.Add(hook)
		}
	}

	return logger
}

func (l *LogService) level() logrus.Level {
	if utils.EnvConfig == nil || utils.EnvConfig.Log.Level == "" {
		return logrus.InfoLevel
	}
	level, err := logrus.ParseLevel(utils.EnvConfig.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func (l *LogService) openLogFile(name string) (*os.File, error) {
	dir := "logs"
	if utils.EnvConfig != nil && utils.EnvConfig.Log.Dir != "" {
		dir = utils.EnvConfig.Log.Dir
	}
	logFilePath := path.Join(dir, time.Now().Format("2006-01-02"))
	if err := os.MkdirAll(logFilePath, 0o755); err != nil {
		return nil, err
	}
	fileName := path.Join(logFilePath, name+".log")
	return os.OpenFile(fileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
