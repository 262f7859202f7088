// Package comm provides the collective communication layer: rank/size discovery,
// all-reduce and broadcast over a global or per-group scope, and the
// grouping map-reduce that partitions ranks by an equivalence key.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"github.com/NVIDIA/fgfs/cmn/nlog"
	"github.com/pkg/errors"
)

// reduceMap folds every rank's grouping map into root's over a binomial tree:
// at step mask a rank with that bit clear receives from relrank|mask,
// a rank with that bit set sends to relrank&^mask and is done.
// Returns the packed bytes sent, zero at the root.
func reduceMap(tr Transport, pd *ParDesc, root int) (sent int, err error) {
	var (
		rank    = tr.Rank()
		size    = tr.Size()
		relrank = (rank - root + size) % size
	)
	for mask := 1; mask < size; mask <<= 1 {
		if relrank&mask == 0 {
			src := relrank | mask
			if src >= size {
				continue
			}
			src = (src + root) % size
			buf, err := tr.Recv(src)
			if err != nil {
				return 0, errors.Wrapf(err, "binomial reduce: recv from %d", src)
			}
			if err := pd.UnpackMap(buf); err != nil {
				return 0, errors.Wrapf(err, "binomial reduce: from %d", src)
			}
			if nlog.V(nlog.SmoduleWire) {
				nlog.Infof("rank %d: merged %dB from %d, %d keys", rank, len(buf), src, pd.MapLen())
			}
			continue
		}
		dst := ((relrank &^ mask) + root) % size
		buf := pd.PackMap()
		if err := tr.Send(dst, buf); err != nil {
			return 0, errors.Wrapf(err, "binomial reduce: send to %d", dst)
		}
		return len(buf), nil
	}
	return 0, nil
}
