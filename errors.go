/*
Copyright © 2013 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package exactextract

import "github.com/pkg/errors"

// FeatureError wraps an error encountered while processing one feature,
// carrying the feature's index so a skip-and-continue driver can log
// which feature failed without aborting the whole run.
type FeatureError struct {
	FeatureIndex int
	Err          error
}

func (e *FeatureError) Error() string {
	return errors.Wrapf(e.Err, "feature %d", e.FeatureIndex).Error()
}

func (e *FeatureError) Unwrap() error { return e.Err }

// wrapFeatureErr builds a FeatureError, or returns nil if err is nil.
func wrapFeatureErr(featureIndex int, err error) error {
	if err == nil {
		return nil
	}
	return &FeatureError{FeatureIndex: featureIndex, Err: errors.WithStack(err)}
}

// RingError wraps an error encountered while assembling a single ring's
// coverage, carrying the ring's index within its polygon.
type RingError struct {
	RingIndex int
	Err       error
}

func (e *RingError) Error() string {
	return errors.Wrapf(e.Err, "ring %d: cannot determine coverage fraction", e.RingIndex).Error()
}

func (e *RingError) Unwrap() error { return e.Err }

func wrapRingErr(ringIndex int, err error) error {
	if err == nil {
		return nil
	}
	return &RingError{RingIndex: ringIndex, Err: errors.WithStack(err)}
}
