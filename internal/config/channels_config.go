package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ChannelsConfig describes the message sources. A source with an empty
// setting is disabled rather than invalid, so a deployment can ingest
// from any subset of channels.
type ChannelsConfig struct {
	TgToken    string `mapstructure:"tg_token"`
	TgChatID   int64  `mapstructure:"tg_chat_id"`
	MailboxDir string `mapstructure:"mailbox_dir"`
}

func (config ChannelsConfig) TelegramEnabled() bool {
	return config.TgToken != ""
}

func (config ChannelsConfig) MailboxEnabled() bool {
	return config.MailboxDir != ""
}

func (config ChannelsConfig) validate() error {
	var errs []error

	if config.TgToken != "" && config.TgChatID == 0 {
		errs = append(errs, fmt.Errorf("tg_chat_id is required when tg_token is set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config ChannelsConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("channels.tg_token", "TG_TOKEN"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("channels.tg_chat_id", "TG_CHAT_ID"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("channels.mailbox_dir", "MAILBOX_DIR"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
