package mumble

// computeChanges compares cur to prev field-by-field and sets a bit per
// changed tracked field (spec §4.3 step 5, §6 "Game-state diff"). prev nil
// means "no prior sample", which yields ChangeAll.
func computeChanges(prev, cur *Record) ChangeBits {
	if prev == nil {
		return ChangeAll
	}

	var c ChangeBits
	if cur.UITick != prev.UITick {
		c |= ChangeUiTick
	}
	if cur.Identity != prev.Identity {
		c |= ChangeIdentity
		if cur.Identity.Name != prev.Identity.Name || cur.Identity.Race != prev.Identity.Race {
			c |= ChangeCharacter
		}
	}
	if cur.MapID != prev.MapID {
		c |= ChangeMap
	}
	if cur.ClientPos != prev.ClientPos {
		c |= ChangeWindowPosition
	}
	if cur.ClientSize != prev.ClientSize {
		c |= ChangeWindowSize
	}
	if cur.CamPos != prev.CamPos || cur.CameraFront != prev.CameraFront {
		c |= ChangeCamera
	}
	if cur.PlayerPos != prev.PlayerPos || cur.AvatarFront != prev.AvatarFront {
		c |= ChangePosition
	}
	if cur.CompassWidth != prev.CompassWidth || cur.CompassHeight != prev.CompassHeight ||
		cur.CompassRotation != prev.CompassRotation || cur.PlayerMapPos != prev.PlayerMapPos ||
		cur.MapCenter != prev.MapCenter || cur.MapScale != prev.MapScale {
		c |= ChangeCompass
	}
	if cur.Mount != prev.Mount {
		c |= ChangeMount
	}
	return c
}
