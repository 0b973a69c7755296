/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wordchain

import "errors"

var (
	ErrInvalidNickname = errors.New("invalid nickname")
	ErrNicknameFormat  = errors.New("nickname not allowed")
	ErrNicknameInUse   = errors.New("nickname in use")
	ErrSessionFull     = errors.New("session full")
	ErrClosed          = errors.New("coordinator closed")
	ErrInvalidSettings = errors.New("invalid settings")
)
