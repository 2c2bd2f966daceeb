package wizard

// wordsPerSecond is the assumed narration pace at speed 1.0, roughly 150
// words per minute.
const wordsPerSecond = 2.5

// EstimateDuration converts a script into estimated spoken seconds at the
// given speed. It is only an estimate shown before real narration exists;
// clip selection always uses the synthesized audio's actual duration.
func EstimateDuration(script string, speed float64) float64 {
	words := WordCount(script)
	if words == 0 {
		return 0
	}
	if speed <= 0 {
		speed = 1.0
	}
	return float64(words) / (wordsPerSecond * speed)
}
