package registry

// builtinRecords lists the known Honda motorcycle engine prefixes observed
// on Brazilian-market units. Expected length covers prefix + serial
// (one optional letter plus six or seven digits).
var builtinRecords = []Record{
	// CG series
	{Prefix: "MC27E", Model: "CG 160 Titan/Fan/Start", Displacement: 160, ExpectedLength: 12},
	{Prefix: "MC41E", Model: "CG 150 Titan/Fan", Displacement: 150, ExpectedLength: 12},
	{Prefix: "MC38E", Model: "CG 125 Fan", Displacement: 125, ExpectedLength: 12},
	{Prefix: "MC44E", Model: "CG 150", Displacement: 150, ExpectedLength: 12},
	{Prefix: "MC44E1", Model: "CG 150", Displacement: 150, ExpectedLength: 13},
	{Prefix: "MC52E", Model: "CB 300R", Displacement: 300, ExpectedLength: 12},
	{Prefix: "JC30E", Model: "CG 125i Fan", Displacement: 125, ExpectedLength: 12},
	{Prefix: "JC30E7", Model: "CG 125i Fan", Displacement: 125, ExpectedLength: 13},
	{Prefix: "JC75E", Model: "CG 160", Displacement: 160, ExpectedLength: 12},
	{Prefix: "JC79E", Model: "CG 160 Fan", Displacement: 160, ExpectedLength: 12},
	{Prefix: "JC91E", Model: "CG 160", Displacement: 160, ExpectedLength: 12},
	{Prefix: "JC96E", Model: "CG 160", Displacement: 160, ExpectedLength: 12},
	{Prefix: "JC96E1", Model: "CG 160", Displacement: 160, ExpectedLength: 13},

	// XRE / Bros
	{Prefix: "MD09E", Model: "XRE 300", Displacement: 300, ExpectedLength: 12},
	{Prefix: "MD09E1", Model: "XRE 300", Displacement: 300, ExpectedLength: 13},
	{Prefix: "ND09E", Model: "XRE 300", Displacement: 300, ExpectedLength: 12},
	{Prefix: "ND09E1", Model: "XRE 300", Displacement: 300, ExpectedLength: 13},
	{Prefix: "ND11E1", Model: "XRE 300 Sahara", Displacement: 300, ExpectedLength: 13},
	{Prefix: "MD37E", Model: "NXR 160 Bros", Displacement: 160, ExpectedLength: 12},
	{Prefix: "MD38E", Model: "XRE 190", Displacement: 190, ExpectedLength: 12},
	{Prefix: "MD41E0", Model: "NXR 150 Bros", Displacement: 150, ExpectedLength: 13},
	{Prefix: "MD44E", Model: "XRE 190", Displacement: 190, ExpectedLength: 12},

	// CB big bore
	{Prefix: "NC49E1F", Model: "CB 500F", Displacement: 500, ExpectedLength: 13},
	{Prefix: "NC51E", Model: "CB 500F/X/R", Displacement: 500, ExpectedLength: 12},
	{Prefix: "NC56E", Model: "CB 650F", Displacement: 650, ExpectedLength: 12},
	{Prefix: "NC70E", Model: "CB 650R", Displacement: 650, ExpectedLength: 12},
	{Prefix: "NC75E", Model: "CB 750 Hornet", Displacement: 750, ExpectedLength: 12},

	// Biz / PCX
	{Prefix: "JF77E", Model: "Biz 110i", Displacement: 110, ExpectedLength: 12},
	{Prefix: "JF81E", Model: "Biz 125", Displacement: 125, ExpectedLength: 12},
	{Prefix: "JF83E", Model: "Biz 125", Displacement: 125, ExpectedLength: 12},
	{Prefix: "PC40E", Model: "PCX 150", Displacement: 150, ExpectedLength: 12},
	{Prefix: "PC44E", Model: "PCX 160", Displacement: 160, ExpectedLength: 12},
	{Prefix: "JK12E", Model: "ADV 150", Displacement: 150, ExpectedLength: 12},
	{Prefix: "KYJ", Model: "Biz 125", Displacement: 125, ExpectedLength: 10, Era: EngravingStamped},

	// Legacy stamped-era Titans
	{Prefix: "KC08E", Model: "CG 125 Titan", Displacement: 125, ExpectedLength: 12, Era: EngravingStamped},
	{Prefix: "KC08E2", Model: "CG 125 Titan", Displacement: 125, ExpectedLength: 13, Era: EngravingStamped},
	{Prefix: "KC08E5", Model: "CG 125 Titan", Displacement: 125, ExpectedLength: 13, Era: EngravingStamped},
	{Prefix: "KC16E", Model: "CG 125 Titan", Displacement: 125, ExpectedLength: 12, Era: EngravingStamped},
	{Prefix: "KC16E1", Model: "CG 125", Displacement: 125, ExpectedLength: 13, Era: EngravingStamped},
	{Prefix: "KC16E6", Model: "CG 125 Titan", Displacement: 125, ExpectedLength: 13, Era: EngravingStamped},
	{Prefix: "KC22E1", Model: "CG 125 Cargo", Displacement: 125, ExpectedLength: 13, Era: EngravingStamped},
	{Prefix: "KD03E3", Model: "XLR 125", Displacement: 125, ExpectedLength: 13, Era: EngravingStamped},
	{Prefix: "KD08E", Model: "XLR 125", Displacement: 125, ExpectedLength: 12, Era: EngravingStamped},
	{Prefix: "KD08E1", Model: "XLR 125", Displacement: 125, ExpectedLength: 13, Era: EngravingStamped},
	{Prefix: "KD08E2", Model: "XLR 125", Displacement: 125, ExpectedLength: 13, Era: EngravingStamped},
	{Prefix: "KF34E1", Model: "CBX 250 Twister", Displacement: 250, ExpectedLength: 13, Era: EngravingStamped},
}
