package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env     string `yaml:"env" env-default:"local"`
	Company string `yaml:"company" env-default:""`
	Mongo   struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:"admin"`
		Password string `yaml:"password" env-default:"pass"`
		Database string `yaml:"database" env-default:""`
	} `yaml:"mongo"`
	Redis struct {
		Enabled    bool   `yaml:"enabled" env-default:"false"`
		Address    string `yaml:"address" env-default:"127.0.0.1:6379"`
		Password   string `yaml:"password" env-default:""`
		DB         int    `yaml:"db" env-default:"0"`
		FlowTTLSec int    `yaml:"flow_ttl_sec" env-default:"300"`
	} `yaml:"redis"`
	WhatsApp struct {
		GraphURL    string `yaml:"graph_url" env-default:"https://graph.facebook.com/v21.0"`
		VerifyToken string `yaml:"verify_token" env-default:""`
	} `yaml:"whatsapp"`
	Engine struct {
		CompanyName    string `yaml:"company_name" env-default:"SevaFlow"`
		HelpMessage    string `yaml:"help_message" env-default:"Sorry, I did not understand that. Send 'hi' to see what I can help with."`
		ActionTimeout  int    `yaml:"action_timeout_sec" env-default:"10"`
		MaxTransitions int    `yaml:"max_transitions" env-default:"20"`
	} `yaml:"engine"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"9100"`
		ApiKey string `yaml:"key" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
