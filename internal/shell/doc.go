// Package shell detects the user's shell and produces the PATH hint shown
// after an install into a directory that is not on PATH.
//
// Detection tries $SHELL first and falls back to the parent process.
// Supported shells are bash, zsh and fish; anything else gets a POSIX
// export line without an RC file.
//
// The installer never edits RC files. It only prints what to add:
//
//	export PATH="$HOME/.local/bin:$PATH"   # bash, zsh
//	fish_add_path $HOME/.local/bin         # fish
package shell
