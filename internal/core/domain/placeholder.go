package domain

// HashPlaceholder is the value a floating output's env variable holds while its
// path is unknown: "/" followed by the base-32 SHA-256 of "nix-output:<output>".
func HashPlaceholder(outputName string) string {
	return "/" + FormatDigest(HashString("nix-output:"+outputName), Base32)
}

// DownstreamPlaceholder stands for output outputName of the recipe at drvPath
// inside a dependent recipe, until that output is built.
func DownstreamPlaceholder(drvPath StorePath, outputName string) string {
	payload := "nix-upstream-output:" + drvPath.HashPart() + ":" + OutputPathName(drvPath.DerivationName(), outputName)
	return "/" + FormatDigest(HashString(payload), Base32)
}
