package main

import (
	"os"
	"strings"
	"time"

	"github.com/codestube/bot/internal/database"
	"github.com/codestube/bot/internal/discord"
	"github.com/codestube/bot/internal/events"
	"github.com/codestube/bot/internal/moderation"
	"github.com/codestube/bot/internal/session"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"
)

const envPrefix = "TODOBOT_"

var defaults = map[string]interface{}{
	"address":                 ":8080",
	"log.level":               "info",
	"database.driver":         database.DriverStorm,
	"database.codec":          "msgpack",
	"database.max_open_conns": 10,
	"discord.handler_timeout": discord.DefaultHandlerTimeout.String(),
	"sessions.ttl":            session.DefaultTTL.String(),
	"events.topic":            "todobot.todos",
	"events.queue_size":       events.DefaultQueueSize,
	"events.timeout":          events.DefaultPublishTimeout.String(),
	"moderation.notice_delay": moderation.DefaultNoticeDelay.String(),
}

// load reads the defaults, then the optional yaml file, then the environment.
//
// TODOBOT_DISCORD__TOKEN sets discord.token, lists are comma separated.
// BOT_TOKEN and PORT are still read when the TODOBOT_ variables are missing.
func load(filename string) (*koanf.Koanf, error) {
	konf := koanf.New(".")
	if err := konf.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, errors.Wrap(err, "could not load defaults")
	}

	if filename != "" {
		if err := konf.Load(file.Provider(filename), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "could not load %s", filename)
		}
	}

	legacy := map[string]interface{}{}
	if token := os.Getenv("BOT_TOKEN"); token != "" {
		legacy["discord.token"] = token
	}
	if port := os.Getenv("PORT"); port != "" {
		legacy["address"] = ":" + port
	}
	if err := konf.Load(confmap.Provider(legacy, "."), nil); err != nil {
		return nil, errors.Wrap(err, "could not load legacy environment")
	}

	err := konf.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if strings.Contains(value, ",") {
			return key, splitList(value)
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not load environment")
	}

	return konf, nil
}

func databaseOptions(konf *koanf.Koanf) database.Options {
	return database.Options{
		Driver:       konf.String("database.driver"),
		Path:         konf.String("database.path"),
		Codec:        konf.String("database.codec"),
		URL:          konf.String("database.url"),
		MaxOpenConns: konf.Int("database.max_open_conns"),
	}
}

func discordConfig(konf *koanf.Koanf) discord.Config {
	return discord.Config{
		Token:           konf.String("discord.token"),
		StatusChannelID: konf.String("discord.status_channel_id"),
		HandlerTimeout:  konf.Duration("discord.handler_timeout"),
	}
}

func moderationConfig(konf *koanf.Koanf) moderation.Config {
	return moderation.Config{
		OwnerID:     konf.String("owner.id"),
		OwnerName:   konf.String("owner.name"),
		NoticeDelay: konf.Duration("moderation.notice_delay"),
	}
}

func sessionTTL(konf *koanf.Koanf) time.Duration {
	return konf.Duration("sessions.ttl")
}

// stringList reads a list written either as a yaml sequence or as a comma separated string.
func stringList(konf *koanf.Koanf, key string) []string {
	if s, ok := konf.Get(key).(string); ok {
		return splitList(s)
	}
	return konf.Strings(key)
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// isStorm reports whether the options select the storm driver, which is also the default one.
func isStorm(opts database.Options) bool {
	return opts.Driver == "" || opts.Driver == database.DriverStorm
}
