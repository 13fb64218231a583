package scenario

import "github.com/ecotread/tirecycle/internal/process"

// BaselineProcess returns a fresh copy of the built-in baseline
// process: the current manual recycling pipeline.
func BaselineProcess() process.Process {
	return process.Process{
		{
			ID:              "collection",
			Name:            "Tire Collection",
			Department:      process.DeptCollection,
			EquipmentCost:   50000,
			LaborCost:       200,
			EnergyCost:      50,
			MaintenanceCost: 25,
			DurationHours:   4,
			Description:     "Collection from auto shops, dealerships, waste centers",
		},
		{
			ID:              "tire-transportation",
			Name:            "Tire Transportation to Facility",
			Department:      process.DeptTireTransportation,
			EquipmentCost:   80000,
			LaborCost:       150,
			EnergyCost:      120,
			MaintenanceCost: 40,
			DurationHours:   2,
			Description:     "Transport collected tires to recycling facility",
		},
		{
			ID:              "sorting",
			Name:            "Sorting & Inspection",
			Department:      process.DeptProcessing,
			EquipmentCost:   30000,
			LaborCost:       300,
			EnergyCost:      30,
			MaintenanceCost: 15,
			DurationHours:   3,
			Description:     "Sort and inspect tires for processing",
		},
		{
			ID:              "rim-removal",
			Name:            "Rim & Sidewall Removal",
			Department:      process.DeptProcessing,
			EquipmentCost:   120000,
			LaborCost:       250,
			EnergyCost:      80,
			MaintenanceCost: 60,
			DurationHours:   2,
			Description:     "Remove steel rims and cut sidewalls",
		},
		{
			ID:              "shredding",
			Name:            "Tire Shredding & Steel Separation",
			Department:      process.DeptProcessing,
			EquipmentCost:   380000,
			LaborCost:       400,
			EnergyCost:      700,
			MaintenanceCost: 265,
			DurationHours:   6,
			Description:     "Shred tires and separate steel wires magnetically",
		},
		{
			ID:              "feedstock-transportation",
			Name:            "Processed Feedstock Transportation",
			Department:      process.DeptFeedstockTransportation,
			EquipmentCost:   40000,
			LaborCost:       100,
			EnergyCost:      60,
			MaintenanceCost: 20,
			DurationHours:   1,
			Description:     "Transport processed rubber feedstock to manufacturing",
		},
		{
			ID:              "product-manufacturing",
			Name:            "Rubber Product Manufacturing",
			Department:      process.DeptProductManufacturing,
			EquipmentCost:   300000,
			LaborCost:       350,
			EnergyCost:      250,
			MaintenanceCost: 150,
			DurationHours:   8,
			Description:     "Manufacture rubber products from processed feedstock",
		},
		{
			ID:              "product-distribution",
			Name:            "Product Distribution",
			Department:      process.DeptProductDistribution,
			EquipmentCost:   60000,
			LaborCost:       120,
			EnergyCost:      80,
			MaintenanceCost: 30,
			DurationHours:   2,
			Description:     "Package and distribute finished products to market",
		},
	}
}

// ProposedProcess returns a fresh copy of the built-in proposed
// process: the automated alternative the baseline is compared against.
func ProposedProcess() process.Process {
	return process.Process{
		{
			ID:              "automated-collection",
			Name:            "Automated Collection System",
			Department:      process.DeptCollection,
			EquipmentCost:   120000,
			LaborCost:       120,
			EnergyCost:      40,
			MaintenanceCost: 60,
			DurationHours:   2,
			Description:     "Automated tire collection with IoT tracking",
		},
		{
			ID:              "smart-tire-transportation",
			Name:            "Smart Tire Transportation",
			Department:      process.DeptTireTransportation,
			EquipmentCost:   100000,
			LaborCost:       100,
			EnergyCost:      80,
			MaintenanceCost: 50,
			DurationHours:   1.5,
			Description:     "Route-optimized tire transportation to facility",
		},
		{
			ID:              "ai-processing",
			Name:            "AI-Powered Processing Line",
			Department:      process.DeptProcessing,
			EquipmentCost:   800000,
			LaborCost:       300,
			EnergyCost:      400,
			MaintenanceCost: 400,
			DurationHours:   4,
			Description:     "Integrated AI sorting, rim removal, shredding, and steel separation",
		},
		{
			ID:              "automated-feedstock-transport",
			Name:            "Automated Feedstock Transportation",
			Department:      process.DeptFeedstockTransportation,
			EquipmentCost:   60000,
			LaborCost:       60,
			EnergyCost:      40,
			MaintenanceCost: 30,
			DurationHours:   0.5,
			Description:     "Automated conveyor system for processed feedstock",
		},
		{
			ID:              "advanced-manufacturing",
			Name:            "Advanced Product Manufacturing",
			Department:      process.DeptProductManufacturing,
			EquipmentCost:   450000,
			LaborCost:       250,
			EnergyCost:      200,
			MaintenanceCost: 225,
			DurationHours:   6,
			Description:     "Advanced manufacturing with quality control integration",
		},
		{
			ID:              "smart-distribution",
			Name:            "Smart Product Distribution",
			Department:      process.DeptProductDistribution,
			EquipmentCost:   90000,
			LaborCost:       80,
			EnergyCost:      50,
			MaintenanceCost: 45,
			DurationHours:   1,
			Description:     "Automated packaging and intelligent distribution system",
		},
	}
}

// builtinDisplayName returns the dropdown label of a built-in
// scenario.
func builtinDisplayName(kind Kind) string {
	if kind == KindProposed {
		return "Proposed Process"
	}
	return "Current Process (Baseline)"
}

// modifiedName returns the auto-derived name used when a built-in is
// forked on first edit.
func modifiedName(kind Kind) string {
	if kind == KindProposed {
		return "Modified Proposed"
	}
	return "Modified Baseline"
}

// modifiedDescription returns the auto-derived description used when a
// built-in is forked on first edit.
func modifiedDescription(kind Kind) string {
	if kind == KindProposed {
		return "Modified version of proposed process"
	}
	return "Modified version of baseline process"
}
