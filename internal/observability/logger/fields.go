package logger

import (
	"time"

	"go.uber.org/zap"
)

// HTTP

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Route(v string) zap.Field { return zap.String("route", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// Connector

// Connector identifies the connector handling the operation.
func Connector(v string) zap.Field { return zap.String("connector", v) }

// GrantType is the OAuth grant of a token request.
func GrantType(v string) zap.Field { return zap.String("grant_type", v) }

// Endpoint is an upstream URL. Never pass URLs carrying codes or tokens.
func Endpoint(v string) zap.Field { return zap.String("endpoint", v) }

// Code is a connector error code.
func Code(v string) zap.Field { return zap.String("error_code", v) }

// System

func Component(v string) zap.Field { return zap.String("component", v) }

func Op(v string) zap.Field { return zap.String("op", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }

func String(key, v string) zap.Field { return zap.String(key, v) }
