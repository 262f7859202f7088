// Package gfs answers, collectively over all ranks of a job, questions
// about how a file is served across nodes: is it node-local, how many
// distinct servers provide it, is its content identical everywhere.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package gfs

import (
	"fmt"
	"time"

	"github.com/NVIDIA/fgfs/cmn"
	"github.com/NVIDIA/fgfs/cmn/cos"
	"github.com/NVIDIA/fgfs/cmn/nlog"
	"github.com/NVIDIA/fgfs/cmn/prob"
	"github.com/NVIDIA/fgfs/comm"
	"github.com/NVIDIA/fgfs/fs"
	"github.com/NVIDIA/fgfs/stats"
	"github.com/NVIDIA/fgfs/tracing"
	"github.com/pkg/errors"
)

const NotFilled = -1

// values of the remote-ness all-reduce
const (
	remoteNo  = 0
	remoteYes = 1
	remoteErr = 2
)

// Status is a per-path query object. Every rank must construct it with
// the same path and call the same methods in the same order: each
// method that communicates is a blocking collective.
type Status struct {
	env         *Env
	pd          *comm.ParDesc
	fu          *fs.FileURI
	finfo       *FileInfo
	path        string
	algo        string
	threshold   int
	hiLoCutoff  int
	cardinality int
	nodeLocal   bool
}

func NewStatus(env *Env, path string) *Status {
	return NewStatusThreshold(env, path, env.Config.Triage.ThresholdToSaturate)
}

// NewStatusThreshold overrides the number of processes one server sustains
func NewStatusThreshold(env *Env, path string, threshold int) *Status {
	if threshold <= 0 {
		threshold = cmn.DefaultThresholdToSaturate
	}
	return &Status{
		env:         env,
		pd:          comm.NewParDesc(),
		path:        path,
		threshold:   threshold,
		hiLoCutoff:  NotFilled,
		cardinality: NotFilled,
	}
}

func (s *Status) Path() string           { return s.path }
func (s *Status) ParDesc() *comm.ParDesc { return s.pd }
func (s *Status) FileURI() *fs.FileURI   { return s.fu }
func (s *Status) Threshold() int         { return s.threshold }
func (s *Status) HiLoCutoff() int        { return s.hiLoCutoff }
func (s *Status) Cardinality() int       { return s.cardinality }
func (s *Status) NodeLocal() bool        { return s.nodeLocal }
func (s *Status) Triaged() bool          { return s.cardinality != NotFilled }
func (s *Status) Algorithm() string      { return s.algo }
func (s *Status) FileInfo() *FileInfo    { return s.finfo }
func (s *Status) Env() *Env              { return s.env }
func (s *Status) String() string         { return fmt.Sprintf("gfs[%s, %s]", s.path, s.pd) }
func (s *Status) MountBranch() string    { return s.fu.MountBranch }
func (s *Status) FsType() fs.FsType      { return s.fu.Type }
func (s *Status) Master() bool           { return s.pd.Master() }
func (s *Status) fabric() comm.Fabric    { return s.env.Fabric }
func (s *Status) tracker() stats.Tracker { return s.env.Stats }
func (s *Status) cfg() *cmn.Config       { return s.env.Config }
func (s *Status) elimAlias() bool        { return s.cfg().Grouping.EliminateAlias }

// Triage establishes where the path is served from and estimates the number
// of distinct servers. An empty algo selects the configured one.
func (s *Status) Triage(algo string) (err error) {
	if algo == "" {
		algo = s.cfg().Triage.Algorithm
	}
	var (
		started = time.Now()
		end     = tracing.Start("gfs.triage", "path", s.path, "algo", algo)
	)
	defer func() {
		if err != nil {
			s.tracker().Inc(stats.ErrQueryCount)
			s.logErr("triage", err)
			end("error")
			return
		}
		s.tracker().AddMany(
			stats.NamedVal64{Name: stats.TriageCount, Value: 1},
			stats.NamedVal64{Name: stats.TriageLat, Value: stats.Since(started)},
		)
		end(fmt.Sprintf("cardinality=%d", s.cardinality))
	}()

	switch algo {
	case cmn.AlgoBloomFilter, cmn.AlgoExact:
	case cmn.AlgoSampling, cmn.AlgoHierSplit:
		return cos.NewErrNotImplemented("triage algorithm " + algo)
	default:
		return fmt.Errorf("unknown triage algorithm %q", algo)
	}
	rank, size, master, err := s.fabric().RankSize()
	if err != nil {
		return err
	}
	s.pd.SetRankSize(rank, size, master)
	s.algo = algo

	// agree on remote-ness; also the point where a local resolution
	// failure on any rank becomes everyone's failure
	local := int32(remoteNo)
	fu, errR := s.env.Resolver.Resolve(s.path)
	switch {
	case errR != nil:
		local = remoteErr
	case fu.Remote:
		local = remoteYes
	}
	anyRemote, err := comm.AllReduceInt32(s.fabric(), comm.Global, s.pd, local, comm.OpMax)
	if err != nil {
		return err
	}
	if anyRemote == remoteErr {
		if errR != nil {
			return errors.Wrapf(errR, "triage %q", s.path)
		}
		return errors.Wrapf(errResolveFails, "triage %q: on another rank", s.path)
	}
	s.fu = fu

	s.hiLoCutoff = size / s.threshold
	if anyRemote == remoteNo || s.hiLoCutoff == 0 {
		s.cardinality = size
		s.nodeLocal = anyRemote == remoteNo
		return nil
	}
	if algo == cmn.AlgoExact {
		if err := s.ForceGrouping(); err != nil {
			return err
		}
		s.cardinality = int(s.pd.NumGroups())
		return nil
	}
	return s.bloomEstimate(size)
}

func (s *Status) bloomEstimate(size int) error {
	n := size
	if maxd := s.cfg().Triage.MaxDegreeDistribution; maxd > 0 && maxd < n {
		n = maxd
	}
	bloom := prob.NewBloom(prob.BitsFor(n))
	bloom.Add(s.fu.URI)
	merged, err := comm.AllReduceBytes(s.fabric(), comm.Global, s.pd, bloom.Bytes(), comm.OpBor)
	if err != nil {
		return errors.Wrap(err, "bloom filter merge")
	}
	bloom.Reset()
	bloom.Merge(merged)
	est := bloom.Estimate()
	if est < 0 {
		// saturated: at least as many servers as the filter was sized for
		est = n
	}
	s.cardinality = est
	if nlog.V(nlog.SmoduleGfs) {
		nlog.Infof("%s: %d of %d bits set, estimate %d, cutoff %d", s, bloom.Count(), bloom.Bits(), est, s.hiLoCutoff)
	}
	return nil
}

// ForceGrouping groups ranks by URI unless already grouped
func (s *Status) ForceGrouping() error {
	if s.pd.IsGroupingDone().IsYes() {
		return nil
	}
	if s.fu == nil {
		return ErrNotTriaged
	}
	s.pd.ClearMap()
	return s.fabric().Grouping(comm.Global, s.pd, s.fu.URI, s.elimAlias())
}

//
// distribution predicates
//

// IsFullyDistributed every rank is served by its own node
func (s *Status) IsFullyDistributed() cos.Answer {
	if !s.Triaged() {
		return cos.Error
	}
	return cos.FromBool(s.nodeLocal)
}

// IsPoorlyDistributed few enough servers that all ranks hitting them would saturate
func (s *Status) IsPoorlyDistributed() cos.Answer {
	if s.cardinality == NotFilled || s.hiLoCutoff == NotFilled {
		return cos.Error
	}
	return cos.FromBool(s.cardinality <= s.hiLoCutoff)
}

func (s *Status) IsWellDistributed() cos.Answer { return s.IsPoorlyDistributed().Not() }

// IsUnique a single server for all ranks; to be called collectively
func (s *Status) IsUnique() (ans cos.Answer) {
	end := tracing.Start("gfs.unique", "path", s.path)
	defer func() { end(ans.String()) }()

	poorly := s.IsPoorlyDistributed()
	if poorly.IsErr() {
		return cos.Error
	}
	if poorly.IsNo() && s.cardinality >= s.threshold {
		return cos.No
	}
	if err := s.ForceGrouping(); err != nil {
		s.tracker().Inc(stats.ErrQueryCount)
		s.logErr("unique", err)
		return cos.Error
	}
	return s.pd.IsSingleGroup()
}

// collective failures are returned to every rank, logged only when verbose
func (*Status) logsErrors() bool { return nlog.V(nlog.SmoduleComm) }

func (s *Status) logErr(what string, err error) {
	if s.logsErrors() {
		nlog.Errorf("%s: %s: %v", s, what, err)
	}
}
