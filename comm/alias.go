// Package comm provides the collective communication layer: rank/size discovery,
// all-reduce and broadcast over a global or per-group scope, and the
// grouping map-reduce that partitions ranks by an equivalence key.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"errors"
	"net"
	"strings"

	"github.com/NVIDIA/fgfs/cmn/nlog"
)

// HostLookup resolves a host name (or dotted address) to an IPv4 address
type HostLookup func(host string) (net.IP, error)

var errNoIPv4 = errors.New("no IPv4 address")

func LookupIPv4(host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4, nil
		}
		return nil, errNoIPv4
	}
	ips, err := net.LookupIP(host)
	if err != nil {
		return nil, err
	}
	for _, ip := range ips {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4, nil
		}
	}
	return nil, errNoIPv4
}

// URIHost returns the authority of a "scheme://host/path" URI
func URIHost(uri string) (string, bool) {
	i := strings.Index(uri, "//")
	if i < 0 {
		return "", false
	}
	host := uri[i+2:]
	if j := strings.IndexByte(host, '/'); j >= 0 {
		host = host[:j]
	}
	return host, host != ""
}

// a host written by name rather than by dotted address
func isSymbolic(host string) bool {
	return host[0] >= 'A' && host[len(host)-1] >= 'A'
}

// EliminateAlias handles one narrow case: exactly two URIs whose hosts
// resolve to the same IPv4 address. If the first (in key order) host is
// symbolic it is folded into the second, otherwise the second is folded
// into the first. Returns true if the entries were merged.
// Master only: runs between the reduce and the broadcast.
func (pd *ParDesc) EliminateAlias(lookup HostLookup) (bool, error) {
	if !pd.Master() {
		return false, ErrNotMaster
	}
	if len(pd.groupingMap) != 2 {
		return false, nil
	}
	var (
		keys         = pd.Keys()
		first, secnd = keys[0], keys[1]
	)
	h1, ok1 := URIHost(first)
	h2, ok2 := URIHost(secnd)
	if !ok1 || !ok2 {
		return false, nil
	}
	ip1, err1 := lookup(h1)
	ip2, err2 := lookup(h2)
	if err1 != nil || err2 != nil {
		if nlog.V(nlog.SmoduleComm) {
			nlog.Infof("alias check %q vs %q: unresolved (%v, %v)", h1, h2, err1, err2)
		}
		return false, nil
	}
	if !ip1.Equal(ip2) {
		return false, nil
	}
	var (
		rd1, rd2 = pd.groupingMap[first], pd.groupingMap[secnd]
		merged   = ReduceDesc{FirstRank: min(rd1.FirstRank, rd2.FirstRank), Count: rd1.Count + rd2.Count}
	)
	// the survivor keeps the lowest rank of either alias
	if isSymbolic(h1) {
		pd.groupingMap[secnd] = merged
		delete(pd.groupingMap, first)
	} else {
		pd.groupingMap[first] = merged
		delete(pd.groupingMap, secnd)
	}
	if nlog.V(nlog.SmoduleComm) {
		nlog.Infof("alias: %q and %q name the same server %s", first, secnd, ip1)
	}
	return true, nil
}

// AdjustURI points a rank whose own key was merged away at the surviving key
func (pd *ParDesc) AdjustURI() {
	if _, ok := pd.groupingMap[pd.uri]; ok {
		return
	}
	if len(pd.groupingMap) == 1 {
		for k := range pd.groupingMap {
			pd.uri = k
		}
	}
}
