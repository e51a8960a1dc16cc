package engine

// Params is a static parameter table. It satisfies ParamSet.
type Params map[string]Kind

func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// StandardParams is the decoder argument set shared by the engines in this
// module. Native engines answer Has from their own tables instead.
var StandardParams = Params{
	ParamHMM:         KindString,
	ParamDict:        KindString,
	"-fdict":         KindString,
	"-lm":            KindString,
	"-lmctl":         KindString,
	"-lmname":        KindString,
	"-jsgf":          KindString,
	"-fsg":           KindString,
	"-kws":           KindString,
	"-keyphrase":     KindString,
	"-kws_threshold": KindFloat,
	"-kws_plp":       KindFloat,
	"-kws_delay":     KindInt,
	"-allphone":      KindString,
	"-mllr":          KindString,
	"-logfn":         KindString,
	"-rawlogdir":     KindString,
	"-senlogdir":     KindString,
	"-mfclogdir":     KindString,
	"-backtrace":     KindBool,
	"-verbose":       KindBool,
	"-debug":         KindInt,
	"-toprule":       KindString,
	"-dictcase":      KindBool,

	ParamSampleRate:    KindFloat,
	ParamNFFT:          KindInt,
	"-frate":           KindInt,
	"-wlen":            KindFloat,
	"-nfilt":           KindInt,
	"-lowerf":          KindFloat,
	"-upperf":          KindFloat,
	"-ncep":            KindInt,
	"-dither":          KindBool,
	"-seed":            KindInt,
	"-remove_dc":       KindBool,
	"-remove_noise":    KindBool,
	"-remove_silence":  KindBool,
	"-transform":       KindString,
	"-input_endian":    KindString,
	"-alpha":           KindFloat,
	"-cmn":             KindString,
	"-cmninit":         KindString,
	"-agc":             KindString,
	"-agcthresh":       KindFloat,
	"-varnorm":         KindBool,
	"-feat":            KindString,
	"-lifter":          KindInt,
	"-vad_prespeech":   KindInt,
	"-vad_postspeech":  KindInt,
	"-vad_startspeech": KindInt,
	ParamVADThreshold:  KindFloat,

	"-beam":         KindFloat,
	"-wbeam":        KindFloat,
	"-pbeam":        KindFloat,
	"-lpbeam":       KindFloat,
	"-lponlybeam":   KindFloat,
	"-fwdflatbeam":  KindFloat,
	"-fwdflatwbeam": KindFloat,
	"-pl_window":    KindInt,
	"-pl_beam":      KindFloat,
	"-pl_pbeam":     KindFloat,
	"-maxwpf":       KindInt,
	"-maxhmmpf":     KindInt,
	"-topn":         KindInt,
	"-fwdtree":      KindBool,
	"-fwdflat":      KindBool,
	"-bestpath":     KindBool,
	"-ds":           KindInt,
	ParamLW:         KindFloat,
	ParamFwdFlatLW:  KindFloat,
	ParamBestPathLW: KindFloat,
	ParamPIP:        KindFloat,
	ParamUW:         KindFloat,
	"-wip":          KindFloat,
	"-silprob":      KindFloat,
	"-fillprob":     KindFloat,
	"-ascale":       KindFloat,
	"-compallsen":   KindBool,
	"-nwpen":        KindFloat,
	"-pip_beam":     KindFloat,
}
