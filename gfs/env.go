// Package gfs answers, collectively over all ranks of a job, questions
// about how a file is served across nodes: is it node-local, how many
// distinct servers provide it, is its content identical everywhere.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package gfs

import (
	"errors"

	"github.com/NVIDIA/fgfs/cmn"
	"github.com/NVIDIA/fgfs/comm"
	"github.com/NVIDIA/fgfs/fs"
	"github.com/NVIDIA/fgfs/ios"
	"github.com/NVIDIA/fgfs/sig"
	"github.com/NVIDIA/fgfs/stats"
)

type (
	// Env is everything a query needs besides the path;
	// one per rank, shared by all queries of that rank
	Env struct {
		Fabric   comm.Fabric
		Resolver fs.Resolver
		Stater   ios.Stater
		Signer   sig.Signer
		Config   *cmn.Config
		Stats    stats.Tracker
	}

	EnvOption func(*Env)
)

func WithConfig(config *cmn.Config) EnvOption { return func(e *Env) { e.Config = config } }
func WithSigner(s sig.Signer) EnvOption       { return func(e *Env) { e.Signer = s } }
func WithStater(st ios.Stater) EnvOption      { return func(e *Env) { e.Stater = st } }
func WithStats(t stats.Tracker) EnvOption     { return func(e *Env) { e.Stats = t } }

func NewEnv(fabric comm.Fabric, resolver fs.Resolver, opts ...EnvOption) (*Env, error) {
	if fabric == nil || resolver == nil {
		return nil, errors.New("gfs: fabric and resolver are required")
	}
	env := &Env{Fabric: fabric, Resolver: resolver}
	for _, opt := range opts {
		opt(env)
	}
	if env.Config == nil {
		env.Config = cmn.DefaultConfig()
	}
	if err := env.Config.Validate(); err != nil {
		return nil, err
	}
	if env.Signer == nil {
		s, err := sig.New(env.Config.Signature.Type)
		if err != nil {
			return nil, err
		}
		env.Signer = s
	}
	if env.Stater == nil {
		env.Stater = ios.OSStater{}
	}
	if env.Stats == nil {
		env.Stats = stats.NewLocal()
	}
	return env, nil
}
