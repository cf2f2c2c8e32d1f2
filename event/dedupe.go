package event

// Deduper drops a line identical to the one received immediately before it, which is how
// duplicate UDP delivery of a single syslog message shows up.
type Deduper struct {
	previous string
	seen     bool
}

func (d *Deduper) IsRepeat(line string) bool {
	if d.seen && line == d.previous {
		return true
	}
	d.previous, d.seen = line, true
	return false
}
