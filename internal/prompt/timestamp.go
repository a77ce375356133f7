package prompt

// timestampConvention is the fixed instruction block embedded in every
// prompt so that numeric timestamps in responses are always seconds since
// the start of the recording, derived from the transcript's [MM:SS] markers.
const timestampConvention = `TIMESTAMP CONVENTION
The transcript carries [MM:SS] markers giving each transmission's offset from
the start of the recording. Every "timeSeconds" value you return MUST be the
marker converted to whole seconds since the start: minutes times 60 plus
seconds. Use the marker of the transmission the item came from.

Worked examples:
- A transmission at [00:14] has timeSeconds 14.
- A transmission at [01:02] has timeSeconds 62.
- A transmission at [12:45] has timeSeconds 765.

Never invent wall-clock times and never return the raw "MM:SS" string in a
timeSeconds field.`
