// Copyright 2025-2026 The DiscordChatter Authors

package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mcbridge/discordchatter/pkg/host"
)

const helpText = `DiscordChatter commands:
  dc help                  show this help
  dc reload                reconnect the Discord bot
  dc config help           list configuration keys
  dc config <key> <value>  change a configuration value`

const configHelpText = `Configuration keys:
  token                          Discord bot token (console only)
  chanID                         Discord channel ID (a <#...> mention is accepted)
  BotEnabled                     true/false, master enable switch
  PostDiscordMessagesToConsole   true/false, echo relayed messages to the console
  EnableJoinLeaveMessages        true/false, announce player joins and leaves
  EnableServerStartStopMessages  true/false, announce server start and stop
  status                         online, idle, invisible or dnd
  activityType                   playing, streaming, listening, watching or competing
  activityName                   presence activity text
Changes to token, chanID or presence take effect after dc reload.`

// The parsed command AST. parseCommand is the single place the positional
// token shape is validated; dispatch only switches on the variant.
type (
	command          interface{ isCommand() }
	helpCommand      struct{}
	reloadCommand    struct{}
	configHelpCommand struct{}
	configSetCommand struct{ key, value string }
)

func (helpCommand) isCommand()       {}
func (reloadCommand) isCommand()     {}
func (configHelpCommand) isCommand() {}
func (configSetCommand) isCommand()  {}

// parseCommand validates the whitespace-tokenized arguments of one `dc`
// invocation. Errors name the offending token.
func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return helpCommand{}, nil
	}
	switch args[0] {
	case "help":
		return helpCommand{}, nil
	case "reload":
		return reloadCommand{}, nil
	case "config":
		if len(args) == 2 && args[1] == "help" {
			return configHelpCommand{}, nil
		}
		if len(args) != 3 {
			return nil, errors.New("usage: dc config <key> <value> (or `dc config help`)")
		}
		return configSetCommand{key: args[1], value: args[2]}, nil
	default:
		return nil, fmt.Errorf("unknown subcommand %q, see `dc help`", args[0])
	}
}

// CommandProcessor handles the `dc` operator command surface.
type CommandProcessor struct {
	bridge *Bridge
	store  *ConfigStore
	host   host.Host
	log    zerolog.Logger
}

func newCommandProcessor(b *Bridge, store *ConfigStore, h host.Host, log zerolog.Logger) *CommandProcessor {
	return &CommandProcessor{
		bridge: b,
		store:  store,
		host:   h,
		log:    log.With().Str("component", "command").Logger(),
	}
}

// handle runs one invocation. Called on the bridge event loop.
func (p *CommandProcessor) handle(ctx context.Context, inv host.Invoker, args []string) {
	cmd, err := parseCommand(args)
	if err != nil {
		p.reply(inv, err.Error())
		return
	}
	switch cmd := cmd.(type) {
	case helpCommand:
		p.reply(inv, helpText)
	case configHelpCommand:
		p.reply(inv, configHelpText)
	case reloadCommand:
		p.handleReload(ctx, inv)
	case configSetCommand:
		p.handleConfigSet(inv, cmd)
	}
}

func (p *CommandProcessor) handleReload(ctx context.Context, inv host.Invoker) {
	err := p.bridge.reload(ctx)
	switch {
	case errors.Is(err, ErrBotDisabled):
		p.reply(inv, ErrBotDisabled.Error())
	case err != nil:
		// Reload failures outside the recognized configuration shapes are
		// unexpected faults and must not be masked by the command surface.
		p.reply(inv, "Reload failed: "+err.Error())
		p.bridge.raiseFatal(err)
	default:
		p.reply(inv, "Reload complete.")
	}
}

func (p *CommandProcessor) handleConfigSet(inv host.Invoker, cmd configSetCommand) {
	// The token is a sensitive credential; only the console may change it.
	if cmd.key == "token" && !inv.Console {
		p.reply(inv, "The token can only be changed from the server console.")
		return
	}
	if err := p.store.Set(cmd.key, cmd.value); err != nil {
		p.reply(inv, err.Error())
		return
	}
	p.reply(inv, fmt.Sprintf("Set %s. Run `dc reload` to apply connection settings.", cmd.key))
}

// reply delivers the response to whoever invoked the command: the process
// log for the console, an in-game message addressed to that single player
// otherwise.
func (p *CommandProcessor) reply(inv host.Invoker, text string) {
	if inv.Console {
		for _, line := range strings.Split(text, "\n") {
			p.log.Info().Msg(line)
		}
		return
	}
	if err := p.host.Tell(inv.Player, text); err != nil {
		p.log.Error().Err(err).Str("player", inv.Player).Msg("Failed to reply to player")
	}
}
