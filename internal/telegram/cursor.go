package telegram

import "strconv"

// Cursor tracks the next getUpdates offset. The zero value means no update
// has been consumed yet and the first poll is a plain short poll.
//
// A Cursor is not safe for concurrent use.
type Cursor struct {
	offset int64
}

// Offset returns the offset the next poll will request, 0 if none.
func (c *Cursor) Offset() int64 { return c.offset }

// NextPollParameters builds the getUpdates query string for the next poll.
// One update at a time, messages and callback queries only.
func (c *Cursor) NextPollParameters() string {
	params := "?limit=1&allowed_updates=message,callback_query"
	if c.offset != 0 {
		params += "&offset=" + strconv.FormatInt(c.offset, 10)
	}
	return params
}

// Advance marks updateID as consumed. An id of 0 is absent data and is ignored.
func (c *Cursor) Advance(updateID int64) {
	if updateID == 0 {
		return
	}
	c.offset = updateID + 1
}
