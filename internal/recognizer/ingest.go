package recognizer

// WriteSync decodes one chunk on the calling goroutine. Outside of
// processing the chunk is dropped silently.
//
// After a successful decode the speech boundary is tracked: the first
// chunk in speech raises speechDetected, and the first chunk back in
// silence raises silenceDetected and, with silence detection enabled,
// stops the session. The chunk's hyp event fires last.
func (s *Session) WriteSync(samples []int16) error {
	s.mu.Lock()
	if s.state != StateProcessing {
		s.mu.Unlock()
		return nil
	}
	if err := s.dec.ProcessRaw(samples); err != nil {
		s.mu.Unlock()
		return s.fail(operationError("write", "failed to process audio data", err))
	}
	text, score := s.dec.Hypothesis()
	inSpeech := s.dec.InSpeech()

	var speechStarted, silenceStarted bool
	switch {
	case !s.speechDetected && inSpeech:
		s.speechDetected = true
		speechStarted = true
	case s.speechDetected && !inSpeech:
		silenceStarted = true
	}
	stopOnSilence := s.silenceDetection
	s.mu.Unlock()

	if speechStarted {
		s.events.signal(EventSpeechDetected)
	}
	if silenceStarted {
		s.events.signal(EventSilenceDetected)
		if stopOnSilence {
			// Stop reports its own failure; the chunk's hyp still fires.
			_ = s.Stop()
		}
	}

	s.events.hyp(text, score)
	return nil
}

// Write queues one chunk for decoding on the session's worker and returns
// immediately. Jobs run in submission order and each raises hyp, or error
// on failure, strictly after Write has returned. Speech boundaries are not
// tracked on this path.
//
// samples is borrowed and must not change until the job is done.
func (s *Session) Write(samples []int16) *Job {
	j := newJob(samples)
	defer close(j.submitted)

	if s.State() != StateProcessing || !s.queue.submit(j) {
		j.finish(Hypothesis{}, nil, true)
	}
	return j
}

func (s *Session) decode(j *Job) {
	s.mu.Lock()
	if s.state != StateProcessing {
		s.mu.Unlock()
		<-j.submitted
		j.finish(Hypothesis{}, nil, true)
		return
	}
	var h Hypothesis
	err := s.dec.ProcessRaw(j.samples)
	if err == nil {
		h.Text, h.Score = s.dec.Hypothesis()
	}
	s.mu.Unlock()

	<-j.submitted
	if err != nil {
		j.finish(h, s.fail(operationError("write", "failed to process audio data", err)), false)
		return
	}
	s.events.hyp(h.Text, h.Score)
	j.finish(h, nil, false)
}
