package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	Store    Store    `koanf:"store"`
	ICS      ICS      `koanf:"ics"`
	Provider Provider `koanf:"provider"`
	Database Database `koanf:"db"`
}

type Store struct {
	DefaultTimeZone      string        `koanf:"defaulttimezone"`
	DefaultEventDuration time.Duration `koanf:"defaulteventduration"`
	// WeekStartsOn is a weekday name such as "monday".
	WeekStartsOn string `koanf:"weekstartson"`
	// Backend is "file" or "postgres".
	Backend string `koanf:"backend"`
	// File is the iCalendar file confirmed events are persisted to by the file backend.
	File string `koanf:"file"`
}

type ICS struct {
	DefaultTimeZone string `koanf:"defaulttimezone"`
	ProductID       string `koanf:"productid"`
}

type Database struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	User string `koanf:"user"`
	Pass string `koanf:"pass"`
	Name string `koanf:"name"`
}

// Provider identifies the account and calendar decoded events are attributed to.
type Provider struct {
	AccountID  string `koanf:"accountid"`
	CalendarID string `koanf:"calendarid"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Weekday parses WeekStartsOn, falling back to Monday.
func (s Store) Weekday() time.Weekday {
	if day, ok := weekdays[strings.ToLower(strings.TrimSpace(s.WeekStartsOn))]; ok {
		return day
	}
	return time.Monday
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host: "localhost",
		Port: 8181,
		Store: Store{
			DefaultTimeZone:      "UTC",
			DefaultEventDuration: time.Hour,
			WeekStartsOn:         "monday",
			Backend:              "file",
			File:                 "./data/events.ics",
		},
		ICS: ICS{
			DefaultTimeZone: "UTC",
			ProductID:       "-//Klokku//Klokku Calendar//EN",
		},
		Provider: Provider{
			AccountID:  "local",
			CalendarID: "primary",
		},
		Database: Database{
			Host: "localhost",
			Port: 5432,
			User: "klokku",
			Pass: "",
			Name: "klokku",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "KLOKKU_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "KLOKKU_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
