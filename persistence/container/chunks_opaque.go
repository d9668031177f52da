package container

// GRUP, CAME and SELE chunks carry subsystem-owned payloads the
// container format does not interpret (spec §4.6: "implementer-defined
// ... the container guarantees only that the chunk's bytes are
// delivered intact"). These wrappers exist for symmetry with the
// typed chunk codecs above and to name each chunk's owner; they do
// not add any envelope beyond the chunk's own length+CRC framing.

// EncodeGroupData returns payload unchanged; group/outliner state is
// owned by the editor layer, not this package.
func EncodeGroupData(payload []byte) []byte { return payload }

// DecodeGroupData returns payload unchanged.
func DecodeGroupData(payload []byte) []byte { return payload }

// EncodeCameraData returns payload unchanged; camera state is owned
// by the viewport layer, not this package.
func EncodeCameraData(payload []byte) []byte { return payload }

// DecodeCameraData returns payload unchanged.
func DecodeCameraData(payload []byte) []byte { return payload }

// EncodeSelectionData returns payload unchanged; selection state is
// owned by the editing layer, not this package.
func EncodeSelectionData(payload []byte) []byte { return payload }

// DecodeSelectionData returns payload unchanged.
func DecodeSelectionData(payload []byte) []byte { return payload }
