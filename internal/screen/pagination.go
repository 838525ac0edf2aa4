package screen

// ClampOffset normalizes the stored offset of a list screen against the
// current item count and returns the offset to render from plus the
// paging indicator.
//
// An offset at or past the end of a non-empty list is pulled back to
// the start of the last page and persisted, so a shrinking list never
// strands the viewer on a blank page. Bottom shows when the visible
// page reaches the end of a list longer than one page; More shows
// otherwise; a list that fits on one page shows no indicator.
func ClampOffset(sess *Session, screen string, total, pageSize int) (int, Indicator) {
	if pageSize <= 0 {
		pageSize = 1
	}
	offset := sess.Offset(screen)
	if total > 0 && offset >= total {
		offset = total - pageSize
		if offset < 0 {
			offset = 0
		}
		sess.SetOffset(screen, offset)
	}
	if total <= pageSize {
		return offset, IndicatorNone
	}
	if offset+pageSize >= total {
		return offset, IndicatorBottom
	}
	return offset, IndicatorMore
}

// pageBounds returns the half-open slice bounds for one page.
func pageBounds(offset, pageSize, total int) (int, int) {
	lo := offset
	if lo > total {
		lo = total
	}
	hi := lo + pageSize
	if hi > total {
		hi = total
	}
	return lo, hi
}
