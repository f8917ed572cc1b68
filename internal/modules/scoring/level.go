package scoring

type Level string

const (
	LevelPrincipiante Level = "Principiante"
	LevelIntermedio   Level = "Intermedio"
	LevelAvanzado     Level = "Avanzado"
	LevelExperto      Level = "Experto"
	LevelMaestro      Level = "Maestro"
)

// LevelFor maps a reported total onto the tier ladder.
func (r Rules) LevelFor(total int) Level {
	for _, lvl := range r.Levels {
		if lvl.Below == nil || total < *lvl.Below {
			return Level(lvl.Name)
		}
	}
	if n := len(r.Levels); n > 0 {
		return Level(r.Levels[n-1].Name)
	}
	return LevelPrincipiante
}
