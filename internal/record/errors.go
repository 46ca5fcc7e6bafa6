package record

import "errors"

var ErrUnknownTrack = errors.New("record: unknown track")
