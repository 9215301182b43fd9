// Package handlers defines the function types shared by the bot router and
// its middleware chain.
package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

// Handler processes a single bot update.
type Handler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler
