package capture

const (
	msgListening          = "Listening..."
	msgRecognizing        = "Recognizing..."
	msgTranslating        = "Translating..."
	msgDetectedLanguage   = "Detected language: %s"
	msgNoSpeech           = "Speech not recognized"
	msgServiceError       = "Recognition API error: %s"
	msgUnexpectedError    = "Error: %v"
	msgCaptureFailed      = "Audio capture failed"
	msgTranslationFailed  = "Translation failed"
	msgRecovering         = "Too many errors, restarting..."
	msgCalibrationFailed  = "Microphone calibration failed, using default threshold"
	msgMaxDurationReached = "Maximum recording time reached"
)
