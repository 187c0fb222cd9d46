package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_applock() {
    local cur prev words cword
    _init_completion || return

    local commands="init unlock lock touch status passwd reset biometric compact help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        reset)
            COMPREPLY=($(compgen -W "--force --keep-config" -- "$cur"))
            ;;
        biometric)
            COMPREPLY=($(compgen -W "enable disable status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _applock applock
`

const zshCompletion = `#compdef applock

_applock() {
    local -a commands
    commands=(
        'init:Set a PIN and enable app lock'
        'unlock:Unlock with the PIN'
        'lock:Lock immediately'
        'touch:Record activity to postpone auto-lock'
        'status:Show lock state'
        'passwd:Change the PIN'
        'reset:Remove the PIN and disable app lock'
        'biometric:Manage biometric unlock'
        'compact:Compact the settings database'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'applock commands' commands
            ;;
        args)
            case "${words[2]}" in
                reset)
                    _arguments \
                        '--force[Reset without confirmation]' \
                        '--keep-config[Keep failure and activity counters]'
                    ;;
                biometric)
                    _values 'action' enable disable status
                    ;;
                help)
                    _describe -t commands 'applock commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_applock "$@"
`

const fishCompletion = `# applock fish completions

set -l commands init unlock lock touch status passwd reset biometric compact help completion

complete -c applock -f

# Commands
complete -c applock -n "not __fish_seen_subcommand_from $commands" -a init -d 'Set a PIN'
complete -c applock -n "not __fish_seen_subcommand_from $commands" -a unlock -d 'Unlock with the PIN'
complete -c applock -n "not __fish_seen_subcommand_from $commands" -a lock -d 'Lock immediately'
complete -c applock -n "not __fish_seen_subcommand_from $commands" -a touch -d 'Record activity'
complete -c applock -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show lock state'
complete -c applock -n "not __fish_seen_subcommand_from $commands" -a passwd -d 'Change the PIN'
complete -c applock -n "not __fish_seen_subcommand_from $commands" -a reset -d 'Remove the PIN'
complete -c applock -n "not __fish_seen_subcommand_from $commands" -a biometric -d 'Manage biometric unlock'
complete -c applock -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact settings database'
complete -c applock -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c applock -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# reset flags
complete -c applock -n "__fish_seen_subcommand_from reset" -l force -d 'Reset without confirmation'
complete -c applock -n "__fish_seen_subcommand_from reset" -l keep-config -d 'Keep counters'

# biometric actions
complete -c applock -n "__fish_seen_subcommand_from biometric" -a "enable disable status"

# help completions
complete -c applock -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c applock -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
