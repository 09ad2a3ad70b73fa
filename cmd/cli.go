package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/hazcod/sentinel-actions/config"
	"github.com/hazcod/sentinel-actions/pkg/action"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	ctx := context.Background()

	confFile := flag.String("config", "", "The YAML configuration file.")
	actionName := flag.String("action", "", "The action to run: "+strings.Join(action.Names(), ", ")+".")
	flag.Parse()

	conf := config.Config{}
	if err := conf.Load(logger, *confFile); err != nil {
		logger.WithError(err).WithField("config", *confFile).Fatal("failed to load configuration")
	}

	if err := conf.Validate(); err != nil {
		logger.WithError(err).WithField("config", *confFile).Fatal("invalid configuration")
	}

	logrusLevel, err := logrus.ParseLevel(conf.Log.Level)
	if err != nil {
		logger.WithError(err).Error("invalid log level provided")
		logrusLevel = logrus.InfoLevel
	}
	logger.SetLevel(logrusLevel)

	if *actionName == "" {
		logger.Fatal("no action provided")
	}

	// credential parameters from the configuration

	params := action.Params{
		"tenant_id":           conf.Sentinel.TenantID,
		"client_id":           conf.Sentinel.AppID,
		"client_secret":       conf.Sentinel.SecretKey,
		"subscription_id":     conf.Sentinel.SubscriptionID,
		"resource_group_name": conf.Sentinel.ResourceGroup,
		"workspace_name":      conf.Sentinel.WorkspaceName,
		"timeout_seconds":     strconv.Itoa(conf.Sentinel.TimeoutSeconds),
	}

	if conf.Sentinel.CacheToken {
		params["cache_token"] = "true"
	}

	// remaining key=value arguments become action parameters

	for _, arg := range flag.Args() {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			logger.WithField("argument", arg).Fatal("expected a key=value action parameter")
		}

		params[key] = value
	}

	result, err := action.Run(ctx, logger, *actionName, params)
	if err != nil {
		logger.WithError(err).WithField("action", *actionName).Fatal("could not run action")
	}

	fmt.Println(result)
}
