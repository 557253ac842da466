package rope

// integrate is position-Verlet: velocity is reconstructed from the position
// delta, damped, and re-applied along with gravity. Pinned points are
// skipped entirely; their position belongs to the controller.
func (r *Rope) integrate(width, height, endRadius float64) {
	for i := range r.Points {
		p := &r.Points[i]
		if p.Pinned {
			continue
		}
		vx := (p.X - p.OldX) * Friction
		vy := (p.Y - p.OldY) * Friction
		p.OldX = p.X
		p.OldY = p.Y
		p.X += vx
		p.Y += vy + Gravity
	}
	r.collide(width, height, endRadius)
}

// collide clamps free points back inside the bounds, rewriting the old
// position so the implicit velocity comes out damped rather than zeroed.
func (r *Rope) collide(width, height, endRadius float64) {
	for i := range r.Points {
		p := &r.Points[i]
		if p.Pinned {
			continue
		}
		radius := 0.0
		if i == len(r.Points)-1 {
			radius = endRadius
		}
		vx := p.X - p.OldX

		if p.Y > height-radius {
			// Rest on the floor: kill vertical velocity outright so the
			// point does not re-launch, and bleed horizontal velocity
			// harder than in free flight so it does not skate.
			p.Y = height - radius
			p.OldY = p.Y
			p.OldX = p.X - vx*GroundFriction
		}

		if p.X < radius {
			p.X = radius
			p.OldX = p.X + vx*Bounce
		} else if p.X > width-radius {
			p.X = width - radius
			p.OldX = p.X + vx*Bounce
		}
	}
}
