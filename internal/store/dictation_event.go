package store

import "context"

func (r *eventRepo) AppendDictation(ctx context.Context, data DictationEventData) error {
	return r.insert(ctx, "dictation",
		`INSERT INTO dictation_events
			(sequence, timestamp, dictation_id, question_number, locale, success, transcript_chars, latency_ms, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		data.DictationID, data.QuestionNumber, data.Locale, data.Success,
		data.TranscriptChars, data.LatencyMs, data.ErrorMessage,
	)
}
